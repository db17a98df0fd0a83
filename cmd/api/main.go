package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/supportbox/internal/api/http"
	"github.com/spec-kit/supportbox/internal/api/http/handlers"
	"github.com/spec-kit/supportbox/internal/auth"
	"github.com/spec-kit/supportbox/internal/config"
	"github.com/spec-kit/supportbox/internal/events"
	"github.com/spec-kit/supportbox/internal/gateway"
	"github.com/spec-kit/supportbox/internal/observability"
	"github.com/spec-kit/supportbox/internal/persistence"
	"github.com/spec-kit/supportbox/internal/repository"
	"github.com/spec-kit/supportbox/internal/service"
	"github.com/spec-kit/supportbox/internal/triage"
	"github.com/spec-kit/supportbox/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracing, err := observability.NewTracerProvider(ctx, cfg.Telemetry, cfg.App)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = tracing.Shutdown(shutdownCtx)
	}()

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger))

	ticketRepo, commentRepo := buildRepositories(pg)
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		Protocols:   buildProtocolGenerator(ctx, pg, redis, ticketRepo, logger),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	completer := gateway.NewGeminiClient(cfg.Gateway, gateway.GeminiDependencies{
		Metrics: metrics,
		Logger:  logger.Named("gateway"),
	})
	if cfg.Gateway.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not provided; every triage attempt will fall back to formal intake")
	}

	store := triage.NewStore()
	engine := triage.NewEngine(triage.EngineDependencies{
		Gateway:        completer,
		Sink:           tickets,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger.Named("triage"),
		GatewayTimeout: cfg.Triage.GatewayTimeout(),
		SubmitTimeout:  cfg.Triage.SubmitTimeout(),
	})
	sweeper := worker.NewSessionSweeper(store, cfg.Triage.SessionIdleTTL(), cfg.Triage.SweepInterval(), metrics, logger)
	go sweeper.Run(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTLMinutes)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Triage:            handlers.NewTriageHandler(engine, store, tokens),
		Tickets:           handlers.NewTicketsHandler(tickets),
		AgentTickets:      handlers.NewAgentTicketsHandler(tickets),
		Assistant:         handlers.NewAssistantHandler(service.NewAssistantService(completer, cfg.Triage.GatewayTimeout(), logger)),
		SessionMiddleware: auth.NewSessionMiddleware(tokens, store),
		Metrics:           metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func buildRepositories(pg *persistence.Postgres) (repository.TicketRepository, repository.TicketCommentRepository) {
	if pool := pg.PoolHandle(); pool != nil {
		return repository.NewTicketRepository(pool), repository.NewTicketCommentRepository(pool)
	}
	return repository.NewMemoryTicketRepository(), repository.NewMemoryTicketCommentRepository()
}

func buildProtocolGenerator(ctx context.Context, pg *persistence.Postgres, redis *persistence.Redis, tickets repository.TicketRepository, logger *zap.Logger) service.ProtocolGenerator {
	switch {
	case redis.ClientHandle() != nil:
		gen := service.NewRedisProtocolGenerator(redis.ClientHandle())
		highest, err := tickets.HighestProtocolNumber(ctx)
		if err != nil {
			logger.Fatal("failed to read highest protocol id", zap.Error(err))
		}
		gen.RaiseFloor(highest)
		logger.Info("protocol ids from redis", zap.Int64("floor", highest))
		return gen
	case pg.PoolHandle() != nil:
		logger.Info("protocol ids from postgres sequence")
		return service.NewPostgresProtocolGenerator(pg.PoolHandle())
	default:
		logger.Warn("protocol ids from in-process counter; they restart with the service")
		return service.NewCounterProtocolGenerator()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
