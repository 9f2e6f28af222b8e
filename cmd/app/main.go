// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-tutor-backend/internal/config"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/domain/ports/repository"
	aiAdapters "ai-tutor-backend/internal/infra/adapters/ai"
	tele "ai-tutor-backend/internal/infra/adapters/telegram"
	"ai-tutor-backend/internal/infra/api"
	apiv1 "ai-tutor-backend/internal/infra/api/apiv1"
	pg "ai-tutor-backend/internal/infra/db/postgres"
	"ai-tutor-backend/internal/infra/logging"
	"ai-tutor-backend/internal/infra/metrics"
	red "ai-tutor-backend/internal/infra/redis"
	"ai-tutor-backend/internal/infra/sched"
	"ai-tutor-backend/internal/infra/worker"
	"ai-tutor-backend/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop AI provider allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		logging.New(config.LogConfig{}, *devMode).Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if !cfg.Database.SkipMigrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	tm := pg.NewTxManager(pool)
	rawUsers := pg.NewPostgresUserRepo(pool)
	rawJobs := pg.NewRoadmapJobRepo(pool)
	exerciseRepo := pg.NewExerciseRepo(pool)

	// ---- Redis (optional) ----
	var (
		userRepo repository.UserRepository       = rawUsers
		jobReads repository.RoadmapJobRepository = rawJobs
		limiter  api.Limiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		userRepo = pg.NewUserRepoCacheDecorator(rawUsers, redisClient, cfg.Redis.TTL, logger)
		jobReads = pg.NewRoadmapJobRepoCacheDecorator(rawJobs, redisClient, cfg.Redis.TTL, logger)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis not configured: caching and submission rate limiting disabled")
	}

	// ---- Tutoring oracle ----
	oracle, provider, err := aiAdapters.NewFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai provider")
	}
	logger.Info().Str("provider", provider).Str("model", cfg.AI.DefaultModel).Msg("tutoring oracle ready")

	// ---- Operator alerts ----
	var notifier adapter.JobNotifier = tele.NewNoopNotifier(logger)
	if cfg.Telegram.Token != "" {
		tn, err := tele.NewRealTelegramNotifier(&cfg.Telegram, logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier = tn
		}
	}

	// ---- Background roadmap runs ----
	// The runner reads and writes the uncached store; only it may transition a job.
	workers := worker.NewPool(cfg.Jobs.Workers, logger)
	workers.Start(ctx)
	processor := worker.NewRoadmapJobProcessor(rawJobs, rawUsers, oracle, notifier, tm, workers,
		worker.ProcessorOptions{CallTimeout: cfg.AI.CallTimeout, FinalizeTimeout: cfg.Jobs.FinalizeTimeout}, logger)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	exerciseUC := usecase.NewExerciseUseCase(exerciseRepo, oracle, tm, logger)
	roadmapUC := usecase.NewRoadmapUseCase(jobReads, userRepo, processor, tm, logger)

	// ---- HTTP ----
	tokens := api.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	v1 := apiv1.NewServer(userUC, exerciseUC, roadmapUC, tokens, limiter, apiv1.Options{
		AdminKey:         cfg.Admin.APIKey,
		SubmitRateLimit:  cfg.Jobs.SubmitRateLimit,
		SubmitRateWindow: cfg.Jobs.SubmitRateWindow,
	}, logger)
	router := api.NewRouter(cfg.HTTP, pool, logger, func(r chi.Router) { apiv1.RegisterAPIV1(r, v1) })
	server := api.NewServer(cfg.HTTP, router, logger)
	serveErr := server.Start()

	// ---- Orphan reporter ----
	reporter := sched.NewOrphanReporter(cfg.Jobs.OrphanInterval, cfg.Jobs.OrphanAfter, rawJobs, logger)
	go func() { _ = reporter.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// In-flight runs get the rest of the deadline to reach a terminal state.
	if err := workers.Stop(shutdownCtx); err != nil {
		if errors.Is(err, worker.ErrPoolStopped) {
			logger.Warn().Msg("shutdown deadline reached; interrupted roadmap runs stay processing")
		} else {
			logger.Error().Err(err).Msg("worker pool stop")
		}
	}
	cancel()
	logger.Info().Msg("bye")
}
