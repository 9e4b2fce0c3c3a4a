package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"minerva/internal/adapters/ai"
	"minerva/internal/adapters/config"
	"minerva/internal/adapters/errors/noop"
	"minerva/internal/adapters/errors/sentry"
	"minerva/internal/adapters/kafka"
	"minerva/internal/adapters/postgres"
	"minerva/internal/adapters/redis"
	"minerva/internal/agents"
	"minerva/internal/api"
	"minerva/internal/api/health"
	"minerva/internal/events"
	pgrepo "minerva/internal/repository/postgres"
	redisrepo "minerva/internal/repository/redis"
	"minerva/pkg/errors"
	"minerva/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	pg, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	marketDataRepo := pgrepo.NewMarketDataRepository(pg.DB())
	reportRepo := pgrepo.NewReportRepository(pg.DB())
	queryRepo := pgrepo.NewQueryRepository(pg.DB())
	workflowRepo := pgrepo.NewWorkflowRepository(pg.DB())

	var intentCache agents.ResolutionCache
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		rc, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Warnf("Redis unavailable, intent caching disabled: %v", err)
		} else {
			defer rc.Close()
			redisClient = rc
			intentCache = redisrepo.NewIntentCache(rc.Client(), cfg.Agents.IntentCacheTTL)
			log.Info("Intent cache enabled")
		}
	}

	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		publisher = events.NewPublisher(producer)
		log.Info("Event publishing enabled")
	}

	provider, err := ai.NewOpenAIProvider(cfg.AI)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}

	registry := agents.NewRegistry(
		agents.NewDataCollector(provider, marketDataRepo, agents.CollectorConfig{
			Model:       cfg.Agents.CollectorModel,
			Temperature: cfg.Agents.CollectorTemperature,
			MaxTokens:   cfg.Agents.CollectorMaxTokens,
		}),
		agents.NewReportGenerator(provider, marketDataRepo, reportRepo, agents.ReporterConfig{
			Model:       cfg.Agents.ReporterModel,
			Temperature: cfg.Agents.ReporterTemperature,
			MaxTokens:   cfg.Agents.ReporterMaxTokens,
		}),
		agents.NewQA(provider, marketDataRepo, reportRepo, agents.QAConfig{
			Model:       cfg.Agents.QAModel,
			Temperature: cfg.Agents.QATemperature,
			MaxTokens:   cfg.Agents.QAMaxTokens,
		}),
	)

	resolver := agents.NewResolver(provider, cfg.Agents.ResolverModel, cfg.Agents.ResolverTemperature, intentCache)
	engine := agents.NewEngine(registry)
	orchestrator := agents.NewOrchestrator(resolver, engine, registry, queryRepo, workflowRepo, publisher)

	log.Infof("System initialized, agents: %v", registry.Kinds())

	var redisConn *goredis.Client
	if redisClient != nil {
		redisConn = redisClient.Client()
	}

	healthHandler := health.New(log, pg.DB(), redisConn, cfg.App.Name, cfg.App.Version)
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.API.Port,
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, api.NewHandlers(orchestrator), healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	waitForShutdown(server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(server *api.Server, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("Failed to stop HTTP server: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
