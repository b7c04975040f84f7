// Package bus define el bus de invalidación de cache: mensajes con un
// batch de claves a borrar, publicados por el write path y consumidos de
// forma asíncrona.
//
// Semántica: at-least-once hacia los subscribers; el publisher no espera
// ack del consumer. Perder un mensaje sólo alarga la staleness hasta el
// TTL de la entrada — el write ya está commiteado en el store autoritativo
// antes de publicar, nunca hay pérdida de datos.
package bus

import "context"

// Tags de routing. Cada tag tiene su propio canal durable en el broker.
const (
	TagChannel = "channel"
	TagTopic   = "topic"
	TagUser    = "user"
)

// Message es el contrato de wire del bus: {"keys":[...],"tag":"..."}.
type Message struct {
	Keys []string `json:"keys"`
	Tag  string   `json:"tag"`
}

// Publisher publica mensajes de invalidación.
// Un fallo de publish NUNCA debe fallar el write que lo originó.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber entrega mensajes de invalidación al consumer.
// El canal se cierra cuando la suscripción muere; el consumer decide
// si re-suscribirse.
type Subscriber interface {
	Subscribe(ctx context.Context, tags ...string) (<-chan Message, error)
	Close() error
}

// NoopPublisher descarta todos los mensajes. Para dev sin broker y tests:
// la staleness queda acotada sólo por TTL.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Message) error { return nil }
