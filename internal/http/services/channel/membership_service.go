package channel

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/cache"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	dto "github.com/dropDatabas3/agora/internal/http/dto/channel"
	"github.com/dropDatabas3/agora/internal/observability/logger"
	"go.uber.org/zap"
)

type membershipService struct {
	deps Deps
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(deps Deps) MembershipService {
	return &membershipService{deps: deps}
}

// Join implements the visibility-driven join transition:
//
//	anyone  -> joined (+ auto-join public topics of the channel)
//	invite  -> request (owner approves later)
//	private -> rejected
//
// Duplicate joins never create a second membership: the store-level
// conditional insert wins the race and we answer from the existing record.
func (s *membershipService) Join(ctx context.Context, actorID, channelID, actorEmail string) (*dto.JoinResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.membership"),
		logger.Op("Join"),
		logger.ActorID(actorID),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(channelID) == "" {
		return nil, ErrInvalidInput
	}

	ch, err := s.deps.Repos.Channels().GetByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		log.Error("channel lookup failed", logger.Err(err))
		return nil, err
	}

	switch ch.Visibility {
	case repository.VisibilityAnyone:
		return s.joinPublic(ctx, ch, actorID, actorEmail, log)
	case repository.VisibilityInvite:
		return s.joinByRequest(ctx, ch, actorID, actorEmail, log)
	default:
		// private: rechazo de negocio, no error
		log.Debug("join rejected, channel is private")
		return &dto.JoinResult{Success: false, Message: "this channel is private"}, nil
	}
}

// joinPublic joins directly and cascades into every public topic of the
// channel in the same logical operation.
func (s *membershipService) joinPublic(ctx context.Context, ch *repository.Channel, actorID, actorEmail string, log *zap.Logger) (*dto.JoinResult, error) {
	m, created, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerChannel,
		ContainerID: ch.ID,
		ChannelID:   ch.ID,
		Role:        repository.RoleMember,
		Status:      repository.StatusJoined,
		Email:       actorEmail,
	})
	if err != nil {
		log.Error("membership create failed", logger.Err(err))
		return nil, err
	}
	if !created {
		return existingJoinResult(m), nil
	}

	// cascade: auto-join de topics públicos; los restringidos se unen
	// individualmente después
	keys := []string{cache.ChannelMembersKey(ch.ID)}
	var autoJoined []string

	topics, err := s.deps.Repos.Topics().ListByChannel(ctx, ch.ID)
	if err != nil {
		log.Warn("topic cascade listing failed, joined channel only", logger.Err(err))
		topics = nil
	}
	for _, t := range topics {
		if t.Visibility != repository.VisibilityAnyone {
			continue
		}
		_, tCreated, tErr := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
			ActorID:     actorID,
			Kind:        repository.ContainerTopic,
			ContainerID: t.ID,
			ChannelID:   ch.ID,
			Role:        repository.RoleMember,
			Status:      repository.StatusJoined,
			Email:       actorEmail,
		})
		if tErr != nil {
			log.Warn("topic auto-join failed, continuing", logger.TopicID(t.ID), logger.Err(tErr))
			continue
		}
		if tCreated {
			autoJoined = append(autoJoined, t.ID)
			keys = append(keys, cache.TopicMembersKey(t.ID))
		}
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, keys...)
	log.Info("actor joined channel", logger.Count(len(autoJoined)))

	return &dto.JoinResult{
		Success:          true,
		JoinStatus:       "joined",
		Membership:       memberView(m),
		AutoJoinedTopics: autoJoined,
	}, nil
}

// joinByRequest creates the pending request and notifies the owner.
func (s *membershipService) joinByRequest(ctx context.Context, ch *repository.Channel, actorID, actorEmail string, log *zap.Logger) (*dto.JoinResult, error) {
	m, created, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerChannel,
		ContainerID: ch.ID,
		ChannelID:   ch.ID,
		Role:        repository.RoleMember,
		Status:      repository.StatusRequest,
		Email:       actorEmail,
	})
	if err != nil {
		log.Error("membership create failed", logger.Err(err))
		return nil, err
	}
	if !created {
		return existingJoinResult(m), nil
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, cache.ChannelMembersKey(ch.ID))
	s.notifyOwner(ctx, ch, actorID)
	log.Info("join request created")

	return &dto.JoinResult{
		Success:    true,
		JoinStatus: "request",
		Message:    "wait for approval",
		Membership: memberView(m),
	}, nil
}

// JoinWithInvite redeems a single-use invite code. The guard chain: code
// exists, still active, not past expire_time, and issued by the channel's
// *current* owner — no implicit renewal, no grandfathered issuers.
func (s *membershipService) JoinWithInvite(ctx context.Context, actorID, code, actorEmail string) (*dto.JoinResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.membership"),
		logger.Op("JoinWithInvite"),
		logger.ActorID(actorID),
	)

	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}

	inv, err := s.deps.Repos.Invites().GetByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInviteInvalid
		}
		log.Error("invite lookup failed", logger.Err(err))
		return nil, err
	}

	if inv.Status == repository.InviteExpired || time.Now().After(inv.ExpireTime) {
		log.Debug("invite rejected, expired", logger.ChannelID(inv.ChannelID))
		return nil, ErrInviteExpired
	}
	if inv.Status != repository.InviteActive {
		return nil, ErrInviteInvalid
	}

	ch, err := s.deps.Repos.Channels().GetByID(ctx, inv.ChannelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if inv.IssuerID != ch.OwnerID {
		// el emisor ya no es el owner actual: código inválido
		log.Debug("invite rejected, issuer is not current owner", logger.ChannelID(ch.ID))
		return nil, ErrInviteInvalid
	}

	// CAS active→used: una doble redención concurrente pierde acá
	if err := s.deps.Repos.Invites().MarkUsed(ctx, inv.ID); err != nil {
		if repository.IsConflict(err) {
			return nil, ErrInviteInvalid
		}
		log.Error("invite mark-used failed", logger.Err(err))
		return nil, err
	}

	m, created, err := s.deps.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     actorID,
		Kind:        repository.ContainerChannel,
		ContainerID: ch.ID,
		ChannelID:   ch.ID,
		Role:        repository.RoleMember,
		Status:      repository.StatusJoined,
		Email:       actorEmail,
	})
	if err != nil {
		log.Error("membership create failed", logger.Err(err))
		return nil, err
	}
	if !created {
		return existingJoinResult(m), nil
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, cache.ChannelMembersKey(ch.ID))
	log.Info("actor joined channel via invite", logger.ChannelID(ch.ID))

	return &dto.JoinResult{Success: true, JoinStatus: "joined", Membership: memberView(m)}, nil
}

// Accept transitions request→joined. Owner only.
func (s *membershipService) Accept(ctx context.Context, ownerID, channelID, actorID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.membership"),
		logger.Op("Accept"),
		logger.ChannelID(channelID),
		logger.ActorID(actorID),
	)

	m, ch, err := s.pendingRequest(ctx, ownerID, channelID, actorID)
	if err != nil {
		return err
	}

	if err := s.deps.Repos.Memberships().UpdateStatus(ctx, m.ID, repository.StatusJoined); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("status update failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, cache.ChannelMembersKey(channelID))

	if m.Email != "" {
		go func(email, name string) {
			_ = s.deps.Notifier.SendAcceptedEmail(context.WithoutCancel(ctx), email, name)
		}(m.Email, ch.Name)
	}
	log.Info("join request accepted")
	return nil
}

// Decline transitions request→none (membership removed). Owner only.
func (s *membershipService) Decline(ctx context.Context, ownerID, channelID, actorID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.membership"),
		logger.Op("Decline"),
		logger.ChannelID(channelID),
		logger.ActorID(actorID),
	)

	if _, _, err := s.pendingRequest(ctx, ownerID, channelID, actorID); err != nil {
		return err
	}

	if err := s.deps.Repos.Memberships().Delete(ctx, actorID, repository.ContainerChannel, channelID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("membership delete failed", logger.Err(err))
		return err
	}

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, cache.ChannelMembersKey(channelID))
	log.Info("join request declined")
	return nil
}

// pendingRequest valida owner + request pendiente y retorna la membership.
func (s *membershipService) pendingRequest(ctx context.Context, ownerID, channelID, actorID string) (*repository.Membership, *repository.Channel, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(channelID) == "" || strings.TrimSpace(actorID) == "" {
		return nil, nil, ErrInvalidInput
	}

	ch, err := s.deps.Repos.Channels().GetByID(ctx, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrChannelNotFound
		}
		return nil, nil, err
	}
	if ch.OwnerID != ownerID {
		return nil, nil, ErrNotOwner
	}

	m, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerChannel, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, err
	}
	if m.Role == repository.RoleOwner || m.Status != repository.StatusRequest {
		return nil, nil, ErrNoPendingJoin
	}
	return m, ch, nil
}

// Leave removes the channel membership and cascades the actor's topic
// memberships under it. The whole fan-out goes out as one invalidation
// batch: members(channel), members(each topic held), allTopicsOfChannel.
func (s *membershipService) Leave(ctx context.Context, actorID, channelID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("channel.membership"),
		logger.Op("Leave"),
		logger.ActorID(actorID),
		logger.ChannelID(channelID),
	)

	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(channelID) == "" {
		return ErrInvalidInput
	}

	m, err := s.deps.Repos.Memberships().Get(ctx, actorID, repository.ContainerChannel, channelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		return err
	}
	if m.Role == repository.RoleOwner {
		// el owner no abandona: borra el channel (mantiene el invariante
		// de exactamente una membership owner por container)
		return ErrNotOwner
	}

	topicMemberships, err := s.deps.Repos.Memberships().ListActorTopics(ctx, actorID, channelID)
	if err != nil {
		log.Error("topic membership listing failed", logger.Err(err))
		return err
	}

	if err := s.deps.Repos.Memberships().Delete(ctx, actorID, repository.ContainerChannel, channelID); err != nil {
		if repository.IsNotFound(err) {
			return ErrMemberNotFound
		}
		log.Error("membership delete failed", logger.Err(err))
		return err
	}

	keys := []string{cache.ChannelMembersKey(channelID)}
	for _, tm := range topicMemberships {
		if err := s.deps.Repos.Memberships().Delete(ctx, actorID, repository.ContainerTopic, tm.ContainerID); err != nil && !repository.IsNotFound(err) {
			log.Warn("topic membership delete failed, continuing", logger.TopicID(tm.ContainerID), logger.Err(err))
			continue
		}
		keys = append(keys, cache.TopicMembersKey(tm.ContainerID))
	}
	keys = append(keys, cache.TopicsOfChannelKey(channelID))

	bus.Invalidate(ctx, s.deps.Bus, bus.TagChannel, keys...)
	log.Info("actor left channel", logger.Count(len(topicMemberships)))
	return nil
}

// notifyOwner busca el email del owner y dispara la notificación sin
// bloquear el request.
func (s *membershipService) notifyOwner(ctx context.Context, ch *repository.Channel, actorID string) {
	owner, err := s.deps.Repos.Memberships().Get(ctx, ch.OwnerID, repository.ContainerChannel, ch.ID)
	if err != nil || owner.Email == "" {
		return
	}
	actorName := actorID
	if u, uErr := s.deps.Repos.Users().GetByID(ctx, actorID); uErr == nil && u.Name != "" {
		actorName = u.Name
	}
	go func(ownerEmail, name, channelName string) {
		_ = s.deps.Notifier.SendJoinRequestEmail(context.WithoutCancel(ctx), ownerEmail, name, channelName)
	}(owner.Email, actorName, ch.Name)
}

// existingJoinResult aplica el tie-break del doble join.
func existingJoinResult(m *repository.Membership) *dto.JoinResult {
	if m.Status == repository.StatusJoined {
		return &dto.JoinResult{Success: true, JoinStatus: "already", Membership: memberView(m)}
	}
	return &dto.JoinResult{Success: false, JoinStatus: "request", Message: "wait for approval"}
}

func memberView(m *repository.Membership) *dto.MemberView {
	return &dto.MemberView{
		ActorID:  m.ActorID,
		Role:     string(m.Role),
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
}
