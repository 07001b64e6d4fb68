package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"graphedit/internal/config"
	"graphedit/internal/handler"
	"graphedit/internal/hub"
	"graphedit/internal/repository/sqlite"
	"graphedit/internal/service"
	"graphedit/internal/templates"
	"graphedit/internal/watcher"
)

type serveOptions struct {
	addr       string
	dbPath     string
	watchPath  string
	history    int
	snap       float64
	catalogDir string
	template   string
}

func serveCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		Long: `Run the editor HTTP API with a live event stream at /events.

With --watch, the given graph file is imported at startup and re-imported
whenever it changes on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, opts.template)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address (default "+config.DefaultAddr+")")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database path (default "+config.DefaultDatabasePath+")")
	f.StringVar(&opts.watchPath, "watch", "", "graph file to load and reload on change")
	f.IntVar(&opts.history, "history", 0, "undo history limit")
	f.Float64Var(&opts.snap, "snap", 0, "edge snap distance")
	f.StringVar(&opts.catalogDir, "catalog-dir", "", "directory of extra agent profiles (*.toml)")
	f.StringVar(&opts.template, "template", "", "template to start from")
	return cmd
}

// apply overrides cfg with every flag set on the command line
func (o *serveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if f.Changed("db") {
		cfg.Database.Path = o.dbPath
	}
	if f.Changed("watch") {
		cfg.Watch.Path = o.watchPath
	}
	if f.Changed("history") {
		cfg.Editor.HistoryLimit = o.history
	}
	if f.Changed("snap") {
		cfg.Editor.SnapDistance = o.snap
	}
	if f.Changed("catalog-dir") {
		cfg.Catalog.Dir = o.catalogDir
	}
}

func runServe(ctx context.Context, cfg *config.Config, template string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting graphedit", zap.String("version", version))

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	lib, err := templates.Load()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	eventBus := service.NewEventBus()

	sseHub := hub.New(logger.Named("hub"))
	go sseHub.Run(ctx)

	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	defer eventBus.Unsubscribe(events)
	go hub.Forward[service.Event](ctx, sseHub, events)

	svc, err := service.NewEditorService(service.Options{
		HistoryLimit: cfg.Editor.HistoryLimit,
		SnapDistance: cfg.Editor.SnapDistance,
		Catalog:      cat,
		Templates:    lib,
		Repository:   repo,
		EventBus:     eventBus,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	if template != "" {
		if err := svc.ApplyTemplate(template); err != nil {
			return fmt.Errorf("failed to apply template %q: %w", template, err)
		}
		logger.Info("template applied", zap.String("template", template))
	}

	if cfg.Watch.Path != "" {
		if err := svc.ImportFile(cfg.Watch.Path); err != nil {
			return err
		}
		w := watcher.New(cfg.Watch.Path, func() {
			if err := svc.ImportFile(cfg.Watch.Path); err != nil {
				logger.Warn("reload failed", zap.String("path", cfg.Watch.Path), zap.Error(err))
			}
		}, logger.Named("watcher")).WithDebounce(cfg.Watch.Debounce.Duration())
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", zap.Error(err))
			}
		}()
		logger.Info("watching graph file", zap.String("path", cfg.Watch.Path))
	}

	h := handler.NewEditorHandler(svc, logger.Named("http"))
	router := handler.NewRouter(h, handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Events:         sseHub,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
