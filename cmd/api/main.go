package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/kitchenequip/equipment-backend/api/routes"
	"github.com/kitchenequip/equipment-backend/internal/auth"
	"github.com/kitchenequip/equipment-backend/internal/equipment"
	"github.com/kitchenequip/equipment-backend/internal/history"
	"github.com/kitchenequip/equipment-backend/internal/registrations"
	"github.com/kitchenequip/equipment-backend/internal/sites"
	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/pkg/auth/session"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/metrics"
	"github.com/kitchenequip/equipment-backend/pkg/migrate"
	"github.com/kitchenequip/equipment-backend/pkg/redis"
	"github.com/kitchenequip/equipment-backend/pkg/tracing"
)

const (
	serviceName     = "kitchen-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Env, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, shutdownTracing(context.Background()))
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
	}

	var sessions *session.Manager
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()

		sessions, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			return err
		}
		deps.Redis = redisClient
		deps.Limiter = redisClient
		deps.Sessions = sessions
	} else {
		logg.Warn(ctx, "redis not configured; auth rate limiting and session revocation disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.NewDomainMetrics(registry)
	deps.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	deps.Gatherer = registry

	serialScope, err := enums.ParseSerialScope(cfg.Equipment.SerialScope)
	if err != nil {
		return err
	}

	authParams := auth.ServiceParams{
		DB:        dbClient,
		Logger:    logg,
		Metrics:   domainMetrics,
		JWTConfig: cfg.JWT,
	}
	if sessions != nil {
		authParams.SessionManager = sessions
	}
	if deps.Auth, err = auth.NewService(authParams); err != nil {
		return err
	}
	if deps.Registrations, err = registrations.NewService(registrations.ServiceParams{DB: dbClient, Logger: logg, Metrics: domainMetrics}); err != nil {
		return err
	}
	if deps.Equipment, err = equipment.NewService(equipment.ServiceParams{DB: dbClient, Logger: logg, Metrics: domainMetrics, SerialScope: serialScope}); err != nil {
		return err
	}
	if deps.Sites, err = sites.NewService(sites.ServiceParams{DB: dbClient, Logger: logg, Metrics: domainMetrics}); err != nil {
		return err
	}
	if deps.Users, err = users.NewService(users.ServiceParams{DB: dbClient, Logger: logg}); err != nil {
		return err
	}
	if deps.History, err = history.NewService(history.ServiceParams{DB: dbClient, Logger: logg}); err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(routes.NewRouter(deps), serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"serial_scope": string(serialScope),
		"redis":        cfg.Redis.Enabled(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
