package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/config"
	"github.com/xenn00/apibench/internal/queue"
	user_repo "github.com/xenn00/apibench/internal/repo/user"
	"github.com/xenn00/apibench/internal/routers"
	"github.com/xenn00/apibench/internal/worker"
	"github.com/xenn00/apibench/state"
)

// @title API Bench
// @version 1.0
// @description User registry: create users and list them by creation time.
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg.Log.Level)

	state, err := state.InitAppState(ctx, stop, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer state.Close()

	userRepo, err := user_repo.NewUserRepo(ctx, state)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize user store")
	}

	var producer queue.Producer
	var workerPool *worker.WorkerPool
	if state.Redis != nil {
		producer = queue.NewProducer(state.Redis)

		var deadLetters worker.DeadLetterStore
		if db := state.MongoDatabase(); db != nil {
			deadLetters = worker.NewMongoDeadLetterStore(db)
		}
		workerPool = worker.NewWorkerPool(state.Redis, cfg.Worker.Count, deadLetters)
		workerPool.Start(ctx)
		workerPool.StartDLQWorker(ctx)
	} else {
		log.Warn().Msg("redis not configured, registration jobs are disabled")
	}

	r := routers.NewRouter(state, userRepo, producer)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("app", cfg.App.Name).Str("env", cfg.App.Env).Msgf("Starting server on http://localhost%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ListenAndServe failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Dur("grace", cfg.GraceDelay()).Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GraceDelay())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	} else {
		log.Info().Msg("Server exited gracefully.")
	}

	if workerPool != nil {
		workerPool.Wait()
	}
}

// setupLogger maps LOG_LEVEL onto zerolog. "silent" turns logging off, debug
// keeps the console writer and every other level logs JSON.
func setupLogger(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "silent":
		zerolog.SetGlobalLevel(zerolog.Disabled)
		return
	case "debug", "trace":
	default:
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
