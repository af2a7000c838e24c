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
	"golang.org/x/sync/errgroup"

	"github.com/starford/lumen/internal/api"
	"github.com/starford/lumen/internal/chat"
	"github.com/starford/lumen/internal/prefs"
	"github.com/starford/lumen/internal/remote"
	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/sse"
	"github.com/starford/lumen/internal/syncer"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sync_source", cfg.Sync.Source),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("remote_enabled", cfg.Remote.Enabled()),
		slog.Bool("chat_enabled", cfg.Chat.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := prefs.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init preferences: %w", err)
	}
	defer store.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := newCore(cfg, logger, syncer.WithNotify(func(st syncer.State) {
		broker.PublishSyncState(st)
	}))
	if err != nil {
		return err
	}
	unsubscribe := c.repo.Subscribe(func(s repository.Snapshot) {
		broker.PublishReplaced(s.Version, len(s.Notes), s.Stats)
	})
	defer unsubscribe()

	handlerOpts := []api.HandlerOption{
		api.WithSync(c.syncer),
		api.WithPreferences(store),
	}
	if cfg.Chat.Enabled() {
		completer := remote.NewCompleter(cfg.Chat.BaseURL, cfg.Chat.APIKey, cfg.Chat.Model,
			cfg.Chat.MaxTokens, cfg.Chat.Temperature, cfg.Chat.Timeout)
		handlerOpts = append(handlerOpts, api.WithChat(chat.NewService(completer, c.repo, logger, cfg.Chat.ContextNotes)))
	}
	apiRouter := api.NewRouter(api.NewHandler(c.notes, handlerOpts...), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	mountHealth(r, c.syncer.Ready())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	interval := time.Duration(0)
	if store.AutoSync(ctx, cfg.Sync.AutoSync) {
		interval = store.SyncInterval(ctx, cfg.Sync.Interval)
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sync_interval", interval.String()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Initial sync, then periodic auto-sync.
	g.Go(func() error {
		return c.syncer.Run(gCtx, interval)
	})

	// Re-sync on vault changes.
	if c.watchEnabled(cfg) {
		g.Go(func() error {
			if err := c.syncer.Watch(gCtx, c.vault.Root(), cfg.Sync.Debounce); err != nil {
				logger.Error("vault watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		stop()

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// mountHealth registers the liveness and readiness probes. Readiness flips
// once the first sync has finished, whatever its outcome.
func mountHealth(r chi.Router, ready <-chan struct{}) {
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-ready:
			writeHealth(w, http.StatusOK, "ok")
		default:
			writeHealth(w, http.StatusServiceUnavailable, "syncing")
		}
	})
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
