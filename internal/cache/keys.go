package cache

// Namespace de claves. Los prefijos son contrato de interoperabilidad con
// consumers existentes: no cambiar sin migrar a todos los lectores.
const (
	prefixChannel        = "channel:"
	prefixChannelsByUser = "channels:created:"
	prefixChannelMembers = "channels:members:"
	prefixTopic          = "topic:"
	prefixTopicMembers   = "topics:members:"
	prefixTopicsOfChan   = "topics:all:channel:"
	prefixUser           = "user:"
)

// ChannelKey es la clave del aggregate de un channel.
func ChannelKey(id string) string { return prefixChannel + id }

// ChannelsCreatedKey es la clave de la lista de channels creados por un owner.
func ChannelsCreatedKey(ownerID string) string { return prefixChannelsByUser + ownerID }

// ChannelMembersKey es la clave de la lista de members de un channel.
func ChannelMembersKey(id string) string { return prefixChannelMembers + id }

// TopicKey es la clave del aggregate de un topic.
func TopicKey(id string) string { return prefixTopic + id }

// TopicMembersKey es la clave de la lista de members de un topic.
func TopicMembersKey(id string) string { return prefixTopicMembers + id }

// TopicsOfChannelKey es la clave de la lista de topics de un channel.
func TopicsOfChannelKey(channelID string) string { return prefixTopicsOfChan + channelID }

// UserKey es la clave del perfil de un usuario.
func UserKey(id string) string { return prefixUser + id }
