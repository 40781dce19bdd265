package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/broker"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/database"
	"github.com/stemsi/exstem-proctor/internal/handler"
	"github.com/stemsi/exstem-proctor/internal/logger"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
	"github.com/stemsi/exstem-proctor/internal/router"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/validator"
	"github.com/stemsi/exstem-proctor/internal/worker"
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
		Str("data_dir", cfg.DataDir).
		Msg("Starting ExStem Proctor")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	if pool != nil {
		defer pool.Close()
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	questionRepo, err := repository.NewQuestionRepository(cfg.DataDir, repository.SeedQuestions(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open question bank")
	}
	resultRepo, err := repository.NewResultRepository(cfg.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open result store")
	}

	// ─── Proctoring Bus ────────────────────────────────────────────────
	var bus broker.Bus = broker.NewMemoryBus()
	if rdb != nil {
		bus = broker.NewRedisBus(rdb, log)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService, err := service.NewAuthService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize admin auth")
	}
	proctorService := service.NewProctorService(bus, log)
	questionService := service.NewQuestionService(questionRepo, cfg.QuestionLimit)

	// A typed nil would make the archiver look present, so only assign it
	// when Redis is configured.
	var archiver service.ResultArchiver
	if rdb != nil {
		archiver = worker.NewArchiveQueue(rdb)
	}
	scoringService := service.NewScoringService(questionRepo, resultRepo, proctorService, archiver, cfg.ReviewEnabled, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	settings := model.ExamSettings{
		DurationSeconds: int(cfg.ExamDuration / time.Second),
		MaxWarnings:     cfg.MaxWarnings,
		WebcamRequired:  cfg.WebcamRequired,
	}
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.CookieSecure, log),
		Exam:     handler.NewExamHandler(questionService, scoringService, settings, log),
		Question: handler.NewQuestionHandler(questionService, log),
		Result:   handler.NewResultHandler(scoringService, log),
		Monitor:  handler.NewMonitorHandler(proctorService, scoringService, log),
		WS:       handler.NewWSHandler(proctorService, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(rdb, pool, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	if pool != nil && rdb != nil {
		archiveWorker := worker.NewResultArchiveWorker(pool, rdb, log)
		go func() {
			defer close(workerDone)
			archiveWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
		if rdb != nil {
			log.Warn().Msg("DATABASE_URL not set; archived results stay queued in Redis")
		}
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := newHTTPServer(ctx, ":"+cfg.ServerPort, r)

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. cancel() ends open SSE and
	// WebSocket streams, whose request contexts derive from ctx.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the archive worker and let it flush its buffer.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Archive worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
