package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/airo-kpi/redo-service/internal/api/http"
	"github.com/airo-kpi/redo-service/internal/api/http/handlers"
	"github.com/airo-kpi/redo-service/internal/auth"
	"github.com/airo-kpi/redo-service/internal/config"
	"github.com/airo-kpi/redo-service/internal/events"
	"github.com/airo-kpi/redo-service/internal/observability"
	"github.com/airo-kpi/redo-service/internal/persistence"
	"github.com/airo-kpi/redo-service/internal/repository"
	"github.com/airo-kpi/redo-service/internal/service"
	"github.com/airo-kpi/redo-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketReportRepository(pool, cfg.Report.CandidateChunkSize)
	runRepo := repository.NewReportRunRepository(pool)

	reportService := service.NewReportService(cfg.Report, service.ReportDependencies{
		TicketRepo: ticketRepo,
		RunRepo:    runRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	auditService := service.NewAuditService(dispatcher, runRepo, logger)
	worker.StartAuditWorker(auditService)

	clientRegistry, err := auth.NewClientRegistry(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to build client registry", zap.Error(err))
	}
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(clientRegistry, tokenManager)
	reportsHandler := handlers.NewReportsHandler(reportService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Reports:        reportsHandler,
		AuthMiddleware: authMiddleware,
		RateLimit:      httptransport.RateLimitMiddleware(redis, cfg.Report.RateLimitPerMinute, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
