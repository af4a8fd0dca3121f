package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/database"
	"github.com/imtihan/imtihan-backend/internal/handler"
	"github.com/imtihan/imtihan-backend/internal/logger"
	"github.com/imtihan/imtihan-backend/internal/repository"
	"github.com/imtihan/imtihan-backend/internal/router"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/imtihan/imtihan-backend/internal/validator"
	"github.com/imtihan/imtihan-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Imtihan Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	directionRepo := repository.NewDirectionRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, rdb)
	directionService := service.NewDirectionService(directionRepo, subjectRepo)
	snapshotService := service.NewSnapshotService(subjectRepo, questionRepo)
	paymentService := service.NewPaymentService(paymentRepo)
	cheatService := service.NewCheatService(rdb, log)
	resultService := service.NewResultService(resultRepo)
	sessionService := service.NewSessionService(pool, sessionRepo, userRepo,
		directionRepo, resultRepo, snapshotService, paymentService, cheatService,
		rdb, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Direction: handler.NewDirectionHandler(directionService),
		Session:   handler.NewSessionHandler(sessionService, authService),
		Result:    handler.NewResultHandler(resultService),
		Admin:     handler.NewAdminHandler(sessionService),
		Monitor:   handler.NewMonitorHandler(rdb, directionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	cheatWorker := worker.NewCheatWorker(pool, rdb, log)
	rankingWorker := worker.NewRankingWorker(pool, rdb, resultRepo, log)
	sweepWorker := worker.NewSweepWorker(sessionService, cfg.SweepSchedule, log)

	go cheatWorker.Start(workerCtx)
	go rankingWorker.Start(workerCtx)
	go func() {
		if err := sweepWorker.Start(workerCtx); err != nil {
			log.Error().Err(err).Msg("Sweep worker failed to start")
		}
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
