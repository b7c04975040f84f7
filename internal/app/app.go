// Package app arma el grafo de dependencias del servicio: config, logger,
// store autoritativo, cache, bus de invalidación, services y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/agora/internal/bus"
	"github.com/dropDatabas3/agora/internal/bus/redisbus"
	"github.com/dropDatabas3/agora/internal/cache"
	cachememory "github.com/dropDatabas3/agora/internal/cache/memory"
	cacheredis "github.com/dropDatabas3/agora/internal/cache/redis"
	"github.com/dropDatabas3/agora/internal/config"
	"github.com/dropDatabas3/agora/internal/domain/repository"
	"github.com/dropDatabas3/agora/internal/email"
	channelctrl "github.com/dropDatabas3/agora/internal/http/controllers/channel"
	healthctrl "github.com/dropDatabas3/agora/internal/http/controllers/health"
	topicctrl "github.com/dropDatabas3/agora/internal/http/controllers/topic"
	userctrl "github.com/dropDatabas3/agora/internal/http/controllers/user"
	"github.com/dropDatabas3/agora/internal/http/router"
	channelsvc "github.com/dropDatabas3/agora/internal/http/services/channel"
	topicsvc "github.com/dropDatabas3/agora/internal/http/services/topic"
	usersvc "github.com/dropDatabas3/agora/internal/http/services/user"
	"github.com/dropDatabas3/agora/internal/metrics"
	"github.com/dropDatabas3/agora/internal/observability/logger"
	storememory "github.com/dropDatabas3/agora/internal/store/memory"
	storemongo "github.com/dropDatabas3/agora/internal/store/mongo"
)

// Version se inyecta en build time vía ldflags.
var Version = "dev"

// Container agrupa todo lo que el proceso necesita para servir.
type Container struct {
	Cfg      *config.Config
	Repos    repository.Repositories
	Cache    cache.Cache
	Bus      bus.Publisher
	Consumer *bus.Consumer
	Handler  http.Handler

	closers []func(context.Context) error
}

// Build construye el container completo a partir de la config.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Cfg: cfg}

	// Store autoritativo
	switch cfg.Storage.Driver {
	case "mongo":
		st, err := storemongo.New(ctx, cfg.Storage.Mongo.URI, cfg.Storage.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		c.Repos = st
		c.closers = append(c.closers, st.Close)
	case "memory":
		c.Repos = storememory.New()
	default:
		return nil, fmt.Errorf("storage driver desconocido: %q", cfg.Storage.Driver)
	}

	// Cache
	switch cfg.Cache.Kind {
	case "redis":
		rc := cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis cache ping: %w", err)
		}
		c.Cache = rc
		c.closers = append(c.closers, func(context.Context) error { return rc.Close() })
	case "memory":
		c.Cache = cachememory.New(config.MustDuration(cfg.Cache.Memory.DefaultTTL))
	default:
		return nil, fmt.Errorf("cache kind desconocido: %q", cfg.Cache.Kind)
	}

	// Bus de invalidación. Con noop el cache sigue siendo coherente vía TTL.
	var sub bus.Subscriber
	switch cfg.Bus.Kind {
	case "redis":
		rb := redisbus.New(cfg.Bus.Redis.Addr, cfg.Bus.Redis.DB, config.MustDuration(cfg.Bus.PublishTimeout))
		if err := rb.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis bus ping: %w", err)
		}
		c.Bus = rb
		sub = rb
		c.closers = append(c.closers, func(context.Context) error { return rb.Close() })
	case "noop":
		c.Bus = bus.NoopPublisher{}
	default:
		return nil, fmt.Errorf("bus kind desconocido: %q", cfg.Bus.Kind)
	}
	if sub != nil {
		c.Consumer = bus.NewConsumer(sub, c.Cache)
	}

	// Notificaciones por email (opcionales)
	var notifier email.Notifier = email.NoopNotifier{}
	if cfg.Email.Enabled {
		sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		sender.TLSMode = cfg.SMTP.TLS
		sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		notifier = email.NewSenderNotifier(sender, cfg.Email.BaseURL)
	}

	// Services
	chDeps := channelsvc.Deps{Repos: c.Repos, Cache: c.Cache, Bus: c.Bus, Notifier: notifier}
	tpDeps := topicsvc.Deps{Repos: c.Repos, Cache: c.Cache, Bus: c.Bus}
	usDeps := usersvc.Deps{Repos: c.Repos, Cache: c.Cache}

	// Controllers + router
	channels := channelctrl.NewControllers(
		channelsvc.NewMembershipService(chDeps),
		channelsvc.NewManageService(chDeps),
		channelsvc.NewReadService(chDeps),
	)
	topics := topicctrl.NewControllers(
		topicsvc.NewMembershipService(tpDeps),
		topicsvc.NewManageService(tpDeps),
		topicsvc.NewReadService(tpDeps),
	)
	users := userctrl.NewController(usersvc.NewReadService(usDeps))

	health := healthctrl.NewController(healthctrl.Deps{
		StoreCheck: storeCheck(c.Repos),
		CacheCheck: pingOf(c.Cache),
		BusCheck:   pingOf(c.Bus),
		Version:    Version,
	})

	_ = metrics.Register(nil)

	c.Handler = router.New(router.Deps{
		Channels:  channels,
		Topics:    topics,
		Users:     users,
		Health:    health,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
	})

	return c, nil
}

// Run sirve HTTP y corre el consumer de invalidación hasta señal o error.
func (c *Container) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.L().With(logger.Component("app"))

	srv := &http.Server{
		Addr:         c.Cfg.Server.Addr,
		Handler:      c.Handler,
		ReadTimeout:  config.MustDuration(c.Cfg.Server.ReadTimeout),
		WriteTimeout: config.MustDuration(c.Cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if c.Consumer != nil {
		g.Go(func() error {
			log.Info("invalidation consumer starting")
			return c.Consumer.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	c.Close(context.Background())
	if errors.Is(err, context.Canceled) {
		// señal de apagado, no un fallo
		return nil
	}
	return err
}

// Close libera las conexiones en orden inverso de apertura.
func (c *Container) Close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			logger.L().Warn("cleanup failed", logger.Err(err))
		}
	}
}

func storeCheck(repos repository.Repositories) healthctrl.CheckFunc {
	type pinger interface{ Ping(context.Context) error }
	if p, ok := repos.(pinger); ok {
		return p.Ping
	}
	return nil
}

func pingOf(v any) healthctrl.CheckFunc {
	type pinger interface{ Ping(context.Context) error }
	if p, ok := v.(pinger); ok {
		return p.Ping
	}
	return nil
}
