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
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lotsawa/internal/api"
	"github.com/starford/lotsawa/internal/disambig"
	"github.com/starford/lotsawa/internal/docservice"
	"github.com/starford/lotsawa/internal/index"
	"github.com/starford/lotsawa/internal/mcpserver"
	"github.com/starford/lotsawa/internal/sse"
	"github.com/starford/lotsawa/internal/storage"
	"github.com/starford/lotsawa/internal/verbindex"
)

// runtime holds the components shared by the HTTP and MCP front ends.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	db     *index.DB
	svc    *docservice.Service
}

func (rt *runtime) Close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close index failed", slog.String("error", err.Error()))
	}
}

// setup applies opts, installs the logger and opens storage, the index, the
// verb dictionary and the disambiguator.
func setup(opts ...Option) (*runtime, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logWriter == nil {
		app.logWriter = os.Stdout
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logWriter, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("verb_index_path", cfg.VerbIndex.Path),
		slog.Bool("llm_enabled", cfg.LLM.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure library directory exists.
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svcOpts := []docservice.Option{docservice.WithLogger(logger)}

	if cfg.VerbIndex.Path != "" {
		verbs, err := verbindex.LoadFile(cfg.VerbIndex.Path)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("load verb index: %w", err)
		}
		logger.Info("Verb index loaded", slog.Int("forms", verbs.Size()))
		svcOpts = append(svcOpts, docservice.WithVerbIndex(verbs))
	}

	if cfg.LLM.Enabled {
		llm := disambig.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxOutputTokens)
		svcOpts = append(svcOpts, docservice.WithDisambiguator(llm))
		logger.Info("Disambiguator enabled", slog.String("model", cfg.LLM.Model))
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		db:     db,
		svc:    docservice.NewService(store, db, svcOpts...),
	}, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newRouter builds the root router: middleware, health checks and the API
// mounted under /api.
func newRouter(cfg *Config, svc *docservice.Service, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if cfg.App.CORS.Enabled() {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.App.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "If-Match"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         300,
		}).Handler)
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRouter(cfg, rt.svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.db, rt.store, rt.store.Root(), logger, broker.PublishDocumentEvent); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

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

// RunMCP serves the MCP tools over stdio until the client disconnects.
// Logs go to stderr unless WithLogWriter says otherwise.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogWriter(os.Stderr)}, opts...)
	rt, err := setup(opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}
