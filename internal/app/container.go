package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/bootstrap"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/services"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/seed"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/source"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/storage"
	"github.com/felixgeelhaar/taskglitch/pkg/config"
	"github.com/felixgeelhaar/taskglitch/pkg/observability"
)

// ActivityLogSize is how many recent events the activity log keeps.
const ActivityLogSize = 100

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Persistence
	Storage storage.Backend

	// Events
	EventPublisher eventbus.Publisher
	EventBus       *eventbus.InProcessEventBus
	Activity       *eventbus.ActivityLog

	// Loading
	Source bootstrap.Source
	Loader *bootstrap.Loader

	// Tasks
	Engine           *services.DerivationEngine
	Store            *store.Store
	ListTasksHandler *queries.ListTasksHandler
}

// NewContainer wires every dependency from cfg. The store is created but
// not bootstrapped; call Start.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		Engine:  services.NewDerivationEngine(services.DefaultGradeThresholds()),
	}

	backend, err := storage.Open(ctx, storage.Config{
		Driver:        storage.Driver(cfg.StorageDriver),
		DataDir:       cfg.DataDir,
		RedisURL:      cfg.RedisURL,
		Namespace:     cfg.StorageNamespace,
		DatabaseURL:   cfg.DatabaseURL,
		SQLitePath:    cfg.SQLitePath,
		MaxConns:      cfg.DatabaseMaxConns,
		EncryptionKey: cfg.EncryptionKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	c.Storage = backend
	c.Health.Register("storage", observability.StorageHealthChecker(cfg.StorageDriver, backend.Ping))

	if err := c.initEvents(cfg, logger); err != nil {
		_ = backend.Close()
		return nil, err
	}

	src, err := c.initSource(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Source = src

	loaderOpts := []bootstrap.LoaderOption{
		bootstrap.WithStorage(backend, cfg.StorageKey),
		bootstrap.WithLoaderLogger(logger),
	}
	if src != nil {
		loaderOpts = append(loaderOpts, bootstrap.WithSource(src))
	}
	if cfg.SeedEnabled {
		loaderOpts = append(loaderOpts, bootstrap.WithSeeder(seed.NewGenerator(cfg.SeedValue), cfg.SeedCount))
	}
	c.Loader = bootstrap.NewLoader(loaderOpts...)

	st, err := store.New(backend,
		store.WithLoader(c.Loader),
		store.WithKey(cfg.StorageKey),
		store.WithLocale(cfg.SortLocale),
		store.WithEngine(c.Engine),
		store.WithPublisher(c.EventPublisher),
		store.WithLogger(logger),
		store.WithMetrics(c.Metrics),
	)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = st
	c.ListTasksHandler = queries.NewListTasksHandler(st, c.Engine, cfg.SortLocale)

	return c, nil
}

// initEvents always runs an in-process bus feeding the activity log, and
// fans out to RabbitMQ when configured.
func (c *Container) initEvents(cfg *config.Config, logger *slog.Logger) error {
	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.Activity = eventbus.NewActivityLog(ActivityLogSize)
	c.EventBus.RegisterConsumer(c.Activity)

	switch cfg.EventsDriver {
	case "noop":
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
		c.Health.Register("events", observability.EventBusHealthChecker("noop", c.EventBus.Ping))
	case "rabbitmq":
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using in-process bus only", "error", err)
			c.EventPublisher = c.EventBus
			c.Health.Register("events", observability.EventBusHealthChecker("inprocess", c.EventBus.Ping))
			return nil
		}
		fanout := eventbus.NewFanoutPublisher(c.EventBus, publisher)
		c.EventPublisher = fanout
		c.Health.Register("events", observability.EventBusHealthChecker("rabbitmq", fanout.Ping))
	default:
		c.EventPublisher = c.EventBus
		c.Health.Register("events", observability.EventBusHealthChecker("inprocess", c.EventBus.Ping))
	}
	return nil
}

func (c *Container) initSource(cfg *config.Config, logger *slog.Logger) (bootstrap.Source, error) {
	switch {
	case cfg.SourceURL != "":
		src, err := source.NewHTTPSource(source.HTTPConfig{
			URL:     cfg.SourceURL,
			Timeout: cfg.SourceTimeout,
			Breaker: source.BreakerConfig{
				MaxRequests:      cfg.SourceBreakerMaxRequests,
				Interval:         cfg.SourceBreakerInterval,
				Timeout:          cfg.SourceBreakerTimeout,
				FailureThreshold: cfg.SourceBreakerFailures,
			},
			OAuth: source.OAuthConfig{
				ClientID:     cfg.SourceOAuthClientID,
				ClientSecret: cfg.SourceOAuthClientSecret,
				TokenURL:     cfg.SourceOAuthTokenURL,
				Scopes:       cfg.SourceOAuthScopes,
			},
		}, source.WithSourceLogger(logger), source.WithSourceMetrics(c.Metrics))
		if err != nil {
			return nil, fmt.Errorf("failed to configure task source: %w", err)
		}
		c.Health.Register("source", observability.BreakerHealthChecker("task source", src.BreakerState))
		return src, nil
	case cfg.SourcePath != "":
		return source.NewFileSource(cfg.SourcePath), nil
	default:
		return nil, nil
	}
}

// Start bootstraps the store and waits until the load finishes or ctx is
// done. A failed load is reported through Store.Err, not here.
func (c *Container) Start(ctx context.Context) error {
	select {
	case <-c.Store.Bootstrap(ctx):
		if msg := c.Store.Err(); msg != "" {
			c.Logger.WarnContext(ctx, "task load failed", "error", msg)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PersistLoaded writes the loaded set once when it came from the source or
// the seeder, so ids shown by this run are found by the next one. Sets read
// back from storage are left alone.
func (c *Container) PersistLoaded(ctx context.Context) error {
	if c.Store.Phase() != store.PhaseReady {
		return nil
	}
	origin := c.Loader.Origin()
	if origin.Persisted() {
		return nil
	}
	if err := c.Store.Save(ctx); err != nil {
		return fmt.Errorf("failed to persist %s tasks: %w", origin, err)
	}
	c.Logger.DebugContext(ctx, "persisted loaded tasks", "origin", string(origin))
	return nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Close()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Error("failed to close event publisher", "error", err)
		}
	}

	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			c.Logger.Error("failed to close storage", "error", err)
		}
	}
}
