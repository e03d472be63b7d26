package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/zerify/zerify/internal/agents"
	"github.com/zerify/zerify/internal/api"
	"github.com/zerify/zerify/internal/config"
	"github.com/zerify/zerify/internal/db"
	"github.com/zerify/zerify/internal/extract"
	"github.com/zerify/zerify/internal/repository"
	"github.com/zerify/zerify/internal/services"
	"github.com/zerify/zerify/internal/zerify"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("zerify v0.1.0")
	fmt.Println("Usage: zerify serve")
}

func serve() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	if cfg.Gemini.APIKey == "" {
		slog.Error("GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, misinfo, closeDB, err := buildRepositories(ctx, cfg)
	if err != nil {
		slog.Error("storage error", "err", err)
		os.Exit(1)
	}
	defer closeDB()

	gemini := agents.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.RequestsPerMinute)
	extractor := &extract.FFmpeg{}

	pipeline := services.NewPipeline(gemini, extractor, history, misinfo)
	pipeline.SetRetryPolicy(zerify.RetryPolicy{
		MaxAttempts:   cfg.Pipeline.MaxAttempts,
		InitialDelay:  cfg.Pipeline.InitialDelay,
		MaxDelay:      cfg.Pipeline.MaxDelay,
		BackoffFactor: 2.0,
	})
	pipeline.SetFrameCount(cfg.Pipeline.FrameCount)

	historySvc := services.NewHistoryService(history)
	compareSvc := services.NewCompareService(gemini, history)

	if cfg.Rescan.Enabled {
		rescanner := services.NewRescanner(gemini, misinfo)
		if err := rescanner.Start(ctx, cfg.Rescan.Schedule); err != nil {
			slog.Error("rescan scheduler error", "err", err)
			os.Exit(1)
		}
		defer rescanner.Stop()
		slog.Info("watchlist rescan enabled", "schedule", cfg.Rescan.Schedule)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewServer(pipeline, historySvc, compareSvc, misinfo, gemini).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("starting zerify server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// buildRepositories selects Postgres-backed storage when a database URL
// is configured, in-memory storage otherwise.
func buildRepositories(ctx context.Context, cfg *config.Config) (repository.HistoryRepository, repository.MisinfoRepository, func(), error) {
	if cfg.Database.URL == "" {
		slog.Info("using in-memory storage")
		return repository.NewMemoryHistory(), repository.NewMemoryMisinfo(), func() {}, nil
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, nil, err
	}
	slog.Info("using postgres storage")
	return repository.NewPersistentHistory(database),
		repository.NewPersistentMisinfo(database),
		func() { database.Close() }, nil
}
