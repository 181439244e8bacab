// Package app wires the retention service together and manages its
// lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/brightpath-edu/retention-service/internal/bootstrap"
	"github.com/brightpath-edu/retention-service/internal/config"
	"github.com/brightpath-edu/retention-service/internal/server"
	"github.com/brightpath-edu/retention-service/pkg/events"
	"github.com/brightpath-edu/retention-service/pkg/handler"
	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/risk"
	"github.com/brightpath-edu/retention-service/pkg/risk/builtin"
	"github.com/brightpath-edu/retention-service/pkg/service"
)

// App holds all application dependencies and manages the application
// lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	bus               *events.Bus
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance. Components are
// initialized in dependency order: Redis, retention config, risk engine,
// template catalog, composer, then the servers and telemetry.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	retentionConfig, err := bootstrap.LoadRetentionConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	assessor, registry, err := bootstrap.InitRiskEngine(retentionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init risk engine: %w", err)
	}

	catalog, err := bootstrap.InitTemplateCatalog(retentionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init template catalog: %w", err)
	}

	if err := bootstrap.ValidateWiring(registry, catalog, retentionConfig); err != nil {
		return nil, err
	}

	studentStore := service.NewRedisStudentStore(app.redisClient, service.RedisStudentStoreConfig{})
	limiter := service.NewRedisRateLimiter(app.redisClient, cfg.NudgeWindow)
	tracker := service.NewRedisSessionTracker(app.redisClient)

	composer := nudge.NewComposer(studentStore, assessor, catalog, limiter, nudge.ComposerConfig{
		Window:            cfg.NudgeWindow,
		InactiveAfterDays: inactiveTriggerDays(registry),
	})

	app.bus = events.NewBus()

	retentionHandler := handler.NewRetentionHandler(
		composer, studentStore, assessor, app.bus,
		handler.WithSessionTracker(tracker),
		handler.WithPinger(redisPinger{app.redisClient}),
	)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, cfg.ServiceName, cfg.Environment, cfg.CORSAllowOrigins, retentionHandler)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.OtelServiceName, cfg.Environment, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis initializes the Redis client, retrying the initial ping with
// exponential backoff so the service survives Redis starting second.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisAddr(),
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	maxRetries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// inactiveTriggerDays reads the inactivity rule's configured critical_days
// so the composer's inactive trigger fires at the same gap the rule scores.
func inactiveTriggerDays(registry *risk.Registry) int {
	if r := registry.Get(risk.RuleInactivity); r != nil {
		rc := r.Config()
		return rc.GetInt("critical_days", builtin.DefaultInactivityCriticalDays)
	}
	return builtin.DefaultInactivityCriticalDays
}

// redisPinger adapts the Redis client to the handler health check.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
