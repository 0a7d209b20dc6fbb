// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/feldrik/jotbot/internal/gitsync"
	"github.com/feldrik/jotbot/internal/journal"
	"github.com/feldrik/jotbot/internal/models"
	"github.com/feldrik/jotbot/internal/poller"
	"github.com/feldrik/jotbot/internal/storage"
)

// Run starts the application with the given options and blocks until the
// context ends or a termination signal arrives. Configuration problems
// surface here, before the poll loop starts; per-message errors never do.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("repo_root", cfg.Journal.RepoRoot),
		slog.String("notes_dir", cfg.Journal.NotesDir),
		slog.String("layout", cfg.Journal.Layout),
		slog.Int("poll_interval_seconds", cfg.Telegram.PollIntervalSec),
		slog.String("log_level", cfg.App.LogLevel.String()))

	loc, err := cfg.Journal.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	templates, err := journal.LoadTemplates(cfg.Journal.SkeletonTemplate, cfg.Journal.FragmentTemplate)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	if !gitsync.IsRepository(cfg.Journal.RepoRoot) {
		return fmt.Errorf("repo root is not a git work tree: %s", cfg.Journal.RepoRoot)
	}

	store, err := storage.NewFS(cfg.Journal.RepoRoot)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	jr := journal.New(store, cfg.Journal.NotesDir, journal.Layout(cfg.Journal.Layout), templates)

	syncer := app.syncer
	if syncer == nil {
		syncer = gitsync.New(cfg.Journal.RepoRoot, gitsync.Identity{
			Name:  cfg.Git.AuthorName,
			Email: cfg.Git.AuthorEmail,
		}, cfg.Git.CommandTimeout())
	}

	fetcher := app.fetcher
	if fetcher == nil {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("init telegram client: %w", err)
		}
		logger.Info("Telegram client authorized", slog.String("username", bot.Self.UserName))
		fetcher = bot
	}

	proc := NewProcessor(jr, syncer, loc)
	handle := func(ctx context.Context, msg models.Message) error {
		out := proc.Process(ctx, msg)
		LogOutcome(logger, msg, out)
		return nil // the pipeline logs its own failures; never stop the loop
	}

	p := poller.New(fetcher, handle, logger, cfg.Telegram.PollInterval(), cfg.Telegram.LongPollSec)

	// Translate SIGINT/SIGTERM into context cancellation.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Poll loop.
	g.Go(func() error {
		logger.Info("Starting poll loop")
		return p.Run(gCtx)
	})

	// Health endpoints.
	if cfg.App.HTTP.Enabled() {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		httpServer := &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: r,
		}

		g.Go(func() error {
			logger.Info("Starting health server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down health server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Health server shutdown error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Bot stopped")
	return nil
}
