// Package mongo implementa los repositorios sobre MongoDB.
//
// Una colección por entidad. La unicidad de membership por
// (actor_id, kind, container_id) se garantiza con un índice único más un
// conditional insert (FindOneAndUpdate + $setOnInsert), no con un chequeo
// read-then-write.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/agora/internal/domain/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colChannels    = "channels"
	colTopics      = "topics"
	colMemberships = "memberships"
	colInvites     = "invites"
	colUsers       = "users"
)

// Store implementa repository.Repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New conecta al cluster y prepara los índices.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close desconecta el cliente.
func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// Ping verifica la conexión al cluster.
func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(colMemberships).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "actor_id", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "container_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colInvites).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colTopics).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "channel_id", Value: 1}},
	})
	return err
}

func (s *Store) Channels() repository.ChannelRepository       { return &channelRepo{c: s.db.Collection(colChannels)} }
func (s *Store) Topics() repository.TopicRepository           { return &topicRepo{c: s.db.Collection(colTopics)} }
func (s *Store) Memberships() repository.MembershipRepository { return &membershipRepo{c: s.db.Collection(colMemberships)} }
func (s *Store) Invites() repository.InviteRepository         { return &inviteRepo{c: s.db.Collection(colInvites)} }
func (s *Store) Users() repository.UserRepository             { return &userRepo{c: s.db.Collection(colUsers)} }

// mapErr traduce errores del driver a los sentinels del dominio.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

// ─── documentos bson ───

type channelDoc struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	ImageURL    string    `bson:"image_url,omitempty"`
	Visibility  string    `bson:"visibility"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d channelDoc) toDomain() repository.Channel {
	return repository.Channel{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Visibility:  repository.Visibility(d.Visibility),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type topicDoc struct {
	ID          string    `bson:"_id"`
	ChannelID   string    `bson:"channel_id"`
	OwnerID     string    `bson:"owner_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Visibility  string    `bson:"visibility"`
	Editability string    `bson:"editability"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d topicDoc) toDomain() repository.Topic {
	return repository.Topic{
		ID:          d.ID,
		ChannelID:   d.ChannelID,
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Description: d.Description,
		Visibility:  repository.Visibility(d.Visibility),
		Editability: repository.Editability(d.Editability),
		CreatedAt:   d.CreatedAt,
	}
}

type membershipDoc struct {
	ID          string    `bson:"_id"`
	ActorID     string    `bson:"actor_id"`
	Kind        string    `bson:"kind"`
	ContainerID string    `bson:"container_id"`
	ChannelID   string    `bson:"channel_id"`
	Role        string    `bson:"role"`
	Status      string    `bson:"status"`
	Email       string    `bson:"email,omitempty"`
	JoinedAt    time.Time `bson:"joined_at"`
}

func (d membershipDoc) toDomain() repository.Membership {
	return repository.Membership{
		ID:          d.ID,
		ActorID:     d.ActorID,
		Kind:        repository.ContainerKind(d.Kind),
		ContainerID: d.ContainerID,
		ChannelID:   d.ChannelID,
		Role:        repository.Role(d.Role),
		Status:      repository.MemberStatus(d.Status),
		Email:       d.Email,
		JoinedAt:    d.JoinedAt,
	}
}

type inviteDoc struct {
	ID         string    `bson:"_id"`
	Code       string    `bson:"code"`
	ChannelID  string    `bson:"channel_id"`
	IssuerID   string    `bson:"issuer_id"`
	Status     string    `bson:"status"`
	ExpireTime time.Time `bson:"expire_time"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d inviteDoc) toDomain() repository.Invite {
	return repository.Invite{
		ID:         d.ID,
		Code:       d.Code,
		ChannelID:  d.ChannelID,
		IssuerID:   d.IssuerID,
		Status:     repository.InviteStatus(d.Status),
		ExpireTime: d.ExpireTime,
		CreatedAt:  d.CreatedAt,
	}
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email,omitempty"`
	AvatarURL string    `bson:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d userDoc) toDomain() repository.User {
	return repository.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		AvatarURL: d.AvatarURL,
		CreatedAt: d.CreatedAt,
	}
}

// ─── Channels ───

type channelRepo struct{ c *mongo.Collection }

func (r *channelRepo) GetByID(ctx context.Context, id string) (*repository.Channel, error) {
	var d channelDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *channelRepo) ListByOwner(ctx context.Context, ownerID string) ([]repository.Channel, error) {
	cur, err := r.c.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)

	var out []repository.Channel
	for cur.Next(ctx) {
		var d channelDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

func (r *channelRepo) Create(ctx context.Context, in repository.CreateChannelInput) (*repository.Channel, error) {
	now := time.Now().UTC()
	d := channelDoc{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Visibility:  string(in.Visibility),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.c.InsertOne(ctx, d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *channelRepo) Update(ctx context.Context, id string, name, description, imageURL *string) (*repository.Channel, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	if imageURL != nil {
		set["image_url"] = *imageURL
	}

	var d channelDoc
	err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *channelRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ─── Topics ───

type topicRepo struct{ c *mongo.Collection }

func (r *topicRepo) GetByID(ctx context.Context, id string) (*repository.Topic, error) {
	var d topicDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *topicRepo) ListByChannel(ctx context.Context, channelID string) ([]repository.Topic, error) {
	cur, err := r.c.Find(ctx, bson.M{"channel_id": channelID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)

	var out []repository.Topic
	for cur.Next(ctx) {
		var d topicDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

func (r *topicRepo) Create(ctx context.Context, in repository.CreateTopicInput) (*repository.Topic, error) {
	d := topicDoc{
		ID:          uuid.NewString(),
		ChannelID:   in.ChannelID,
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Description: in.Description,
		Visibility:  string(in.Visibility),
		Editability: string(in.Editability),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.c.InsertOne(ctx, d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *topicRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *topicRepo) DeleteByChannel(ctx context.Context, channelID string) (int, error) {
	res, err := r.c.DeleteMany(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, mapErr(err)
	}
	return int(res.DeletedCount), nil
}

// ─── Memberships ───

type membershipRepo struct{ c *mongo.Collection }

func (r *membershipRepo) Get(ctx context.Context, actorID string, kind repository.ContainerKind, containerID string) (*repository.Membership, error) {
	var d membershipDoc
	filter := bson.M{"actor_id": actorID, "kind": string(kind), "container_id": containerID}
	if err := r.c.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *membershipRepo) ListByContainer(ctx context.Context, kind repository.ContainerKind, containerID string) ([]repository.Membership, error) {
	return r.list(ctx, bson.M{"kind": string(kind), "container_id": containerID})
}

func (r *membershipRepo) ListActorTopics(ctx context.Context, actorID, channelID string) ([]repository.Membership, error) {
	return r.list(ctx, bson.M{
		"actor_id":   actorID,
		"kind":       string(repository.ContainerTopic),
		"channel_id": channelID,
	})
}

func (r *membershipRepo) list(ctx context.Context, filter bson.M) ([]repository.Membership, error) {
	cur, err := r.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	defer cur.Close(ctx)

	var out []repository.Membership
	for cur.Next(ctx) {
		var d membershipDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

// Create hace el conditional insert que cierra la carrera de doble join:
// FindOneAndUpdate con upsert y $setOnInsert sobre la clave única. Si el
// documento ya existía, lo retorna con created=false; si no, el upsert lo
// inserta de forma atómica.
func (r *membershipRepo) Create(ctx context.Context, m repository.Membership) (*repository.Membership, bool, error) {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	d := membershipDoc{
		ID:          uuid.NewString(),
		ActorID:     m.ActorID,
		Kind:        string(m.Kind),
		ContainerID: m.ContainerID,
		ChannelID:   m.ChannelID,
		Role:        string(m.Role),
		Status:      string(m.Status),
		Email:       m.Email,
		JoinedAt:    m.JoinedAt,
	}

	filter := bson.M{"actor_id": d.ActorID, "kind": d.Kind, "container_id": d.ContainerID}
	update := bson.M{"$setOnInsert": d}

	var before membershipDoc
	err := r.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)).Decode(&before)
	if err == nil {
		// ya existía: el ganador de la carrera es el documento previo
		out := before.toDomain()
		return &out, false, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		out := d.toDomain()
		return &out, true, nil
	}
	return nil, false, mapErr(err)
}

func (r *membershipRepo) UpdateStatus(ctx context.Context, id string, status repository.MemberStatus) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *membershipRepo) Delete(ctx context.Context, actorID string, kind repository.ContainerKind, containerID string) error {
	filter := bson.M{"actor_id": actorID, "kind": string(kind), "container_id": containerID}
	res, err := r.c.DeleteOne(ctx, filter)
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *membershipRepo) DeleteByContainer(ctx context.Context, kind repository.ContainerKind, containerID string) (int, error) {
	res, err := r.c.DeleteMany(ctx, bson.M{"kind": string(kind), "container_id": containerID})
	if err != nil {
		return 0, mapErr(err)
	}
	return int(res.DeletedCount), nil
}

func (r *membershipRepo) DeleteByChannel(ctx context.Context, channelID string) (int, error) {
	res, err := r.c.DeleteMany(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return 0, mapErr(err)
	}
	return int(res.DeletedCount), nil
}

// ─── Invites ───

type inviteRepo struct{ c *mongo.Collection }

func (r *inviteRepo) GetByCode(ctx context.Context, code string) (*repository.Invite, error) {
	var d inviteDoc
	if err := r.c.FindOne(ctx, bson.M{"code": code}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *inviteRepo) Create(ctx context.Context, inv repository.Invite) (*repository.Invite, error) {
	d := inviteDoc{
		ID:         uuid.NewString(),
		Code:       inv.Code,
		ChannelID:  inv.ChannelID,
		IssuerID:   inv.IssuerID,
		Status:     string(inv.Status),
		ExpireTime: inv.ExpireTime,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.c.InsertOne(ctx, d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

// MarkUsed es un compare-and-swap: sólo transiciona si seguía active.
func (r *inviteRepo) MarkUsed(ctx context.Context, id string) error {
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(repository.InviteActive)},
		bson.M{"$set": bson.M{"status": string(repository.InviteUsed)}})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

// ─── Users ───

type userRepo struct{ c *mongo.Collection }

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	var d userDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}

func (r *userRepo) Create(ctx context.Context, u repository.User) (*repository.User, error) {
	d := userDoc{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: time.Now().UTC(),
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, err := r.c.InsertOne(ctx, d); err != nil {
		return nil, mapErr(err)
	}
	out := d.toDomain()
	return &out, nil
}
