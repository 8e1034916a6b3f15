package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/query-desk/internal/api/http"
	"github.com/spec-kit/query-desk/internal/api/http/handlers"
	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/config"
	"github.com/spec-kit/query-desk/internal/dashboard"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/persistence"
	"github.com/spec-kit/query-desk/internal/repository"
	"github.com/spec-kit/query-desk/internal/service"
	"github.com/spec-kit/query-desk/internal/worker"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(dispatcher, service.NewNotificationService(dispatcher, logger, cfg.Notification), metrics)

	queryService := service.NewQueryService(service.QueryDependencies{
		Repo:       repository.NewTicketRepository(store),
		Policy:     service.NewRandomPolicy(cfg.Simulation),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err := queryService.Initialize(ctx); err != nil {
		if !apperrors.IsPersistenceWarning(err) {
			logger.Fatal("failed to initialize query service", zap.Error(err))
		}
		logger.Warn("query service started without a durable mirror", zap.Error(err))
	}

	credential, err := auth.NewCredential(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash manager credential", zap.Error(err))
	}
	sessions := repository.NewSessionRepository(store)
	authService := service.NewAuthService(credential,
		auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes), sessions, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessions)

	controller := dashboard.NewController(queryService, dashboard.Options{
		PollInterval: cfg.Dashboard.PollInterval(),
		Logger:       logger,
	})
	if err := controller.Mount(ctx); err != nil {
		logger.Fatal("failed to mount dashboard", zap.Error(err))
	}

	validate := validator.New()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Driver, store),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Queries:        handlers.NewQueriesHandler(controller),
		Dashboard:      handlers.NewDashboardHandler(controller, validate),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	controller.Unmount()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
