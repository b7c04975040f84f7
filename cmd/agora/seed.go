package main

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/agora/internal/app"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// runSeed carga un dataset mínimo de demo: dos usuarios, un channel público
// con dos topics (uno público, uno por invitación) y un channel por
// invitación vacío.
func runSeed(ctx context.Context, c *app.Container) error {
	log := logger.L().With(logger.Component("seed"))

	users := []repository.User{
		{ID: "u-ana", Name: "Ana", Email: "ana@example.com"},
		{ID: "u-bruno", Name: "Bruno", Email: "bruno@example.com"},
	}
	for _, u := range users {
		if _, err := c.Repos.Users().Create(ctx, u); err != nil && !repository.IsConflict(err) {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}

	public, err := c.Repos.Channels().Create(ctx, repository.CreateChannelInput{
		OwnerID:     "u-ana",
		Name:        "general",
		Description: "Canal público de demo",
		Visibility:  repository.VisibilityAnyone,
	})
	if err != nil {
		return fmt.Errorf("seed channel: %w", err)
	}
	if _, _, err := c.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     "u-ana",
		Kind:        repository.ContainerChannel,
		ContainerID: public.ID,
		ChannelID:   public.ID,
		Role:        repository.RoleOwner,
		Status:      repository.StatusJoined,
		Email:       "ana@example.com",
	}); err != nil {
		return fmt.Errorf("seed owner membership: %w", err)
	}

	topics := []repository.CreateTopicInput{
		{ChannelID: public.ID, OwnerID: "u-ana", Name: "bienvenida", Visibility: repository.VisibilityAnyone, Editability: repository.EditabilityAnyone},
		{ChannelID: public.ID, OwnerID: "u-ana", Name: "staff", Visibility: repository.VisibilityInvite, Editability: repository.EditabilityOwner},
	}
	for _, in := range topics {
		t, err := c.Repos.Topics().Create(ctx, in)
		if err != nil {
			return fmt.Errorf("seed topic %s: %w", in.Name, err)
		}
		if _, _, err := c.Repos.Memberships().Create(ctx, repository.Membership{
			ActorID:     "u-ana",
			Kind:        repository.ContainerTopic,
			ContainerID: t.ID,
			ChannelID:   public.ID,
			Role:        repository.RoleOwner,
			Status:      repository.StatusJoined,
			Email:       "ana@example.com",
		}); err != nil {
			return fmt.Errorf("seed topic membership: %w", err)
		}
	}

	gated, err := c.Repos.Channels().Create(ctx, repository.CreateChannelInput{
		OwnerID:     "u-bruno",
		Name:        "privado",
		Description: "Canal por invitación de demo",
		Visibility:  repository.VisibilityInvite,
	})
	if err != nil {
		return fmt.Errorf("seed gated channel: %w", err)
	}
	if _, _, err := c.Repos.Memberships().Create(ctx, repository.Membership{
		ActorID:     "u-bruno",
		Kind:        repository.ContainerChannel,
		ContainerID: gated.ID,
		ChannelID:   gated.ID,
		Role:        repository.RoleOwner,
		Status:      repository.StatusJoined,
		Email:       "bruno@example.com",
	}); err != nil {
		return fmt.Errorf("seed gated owner membership: %w", err)
	}

	log.Info("seed completed",
		logger.String("public_channel", public.ID),
		logger.String("gated_channel", gated.ID),
	)
	fmt.Printf("seeded: channel %s (public, 2 topics), channel %s (invite)\n", public.ID, gated.ID)
	return nil
}
