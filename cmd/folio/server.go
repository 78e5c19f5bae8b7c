package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmacdonald/folio/internal/api"
	"github.com/dmacdonald/folio/internal/article"
	"github.com/dmacdonald/folio/internal/config"
	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/editor"
	"github.com/dmacdonald/folio/internal/events"
	"github.com/dmacdonald/folio/internal/lock"
	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/status"
	"github.com/dmacdonald/folio/internal/storage"
	"github.com/dmacdonald/folio/internal/style"
	"github.com/dmacdonald/folio/internal/webhook"
)

func runServerNoun(args []string) int {
	if len(args) < 1 {
		printServerNounHelp()
		return 1
	}
	if isHelpToken(args[0]) {
		printServerNounHelp()
		return 0
	}

	switch args[0] {
	case "start":
		if hasHelpFlag(args[1:]) {
			printServerStartHelp()
			return 0
		}
		return runStart(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown server action: %s\n", args[0])
		printServerNounHelp()
		return 1
	}
}

func printServerNounHelp() {
	fmt.Println("Usage: folio server <action>")
	fmt.Println("Actions: start")
}

func printServerStartHelp() {
	fmt.Println("Usage: folio server start [--config PATH]")
	fmt.Println("Serve the site, article, webhook checker and admin stream until interrupted.")
}

// loadConfig loads the file named by path, or the discovered config when
// path is empty. A discovered-nothing result runs on defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = config.DiscoverConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// renderers builds the article pipeline and the document renderer shared by
// the server and the render command. Both log through logger.
func renderers(cfg *config.Config, logger *slog.Logger) (*article.Renderer, *doc.Renderer) {
	ed, ok := editor.New(cfg.Render.HighlightStyle)
	if !ok {
		logger.Warn("unknown highlight style, using default", "style", cfg.Render.HighlightStyle, "default", editor.DefaultStyle)
	}
	articles := article.NewRenderer(ed, style.NewConverter(cfg.Render.PtPerRem), logger.With(slog.String("component", "article")))
	docs := doc.NewRenderer(doc.Options{
		PtPerRem: cfg.Render.PtPerRem,
		AssetDir: cfg.Content.StaticDir,
	}, logger.With(slog.String("component", "doc")))
	return articles, docs
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(log.Options{
		Level:      cfg.Service.LogLevel,
		Format:     cfg.Service.LogFormat,
		File:       cfg.Service.LogFile,
		MaxSizeMB:  cfg.Service.LogMaxSizeMB,
		MaxBackups: cfg.Service.LogMaxBackups,
		MaxAgeDays: cfg.Service.LogMaxAgeDays,
	})
	logger := log.WithComponent("main")
	if path == "" {
		logger.Info("folio starting", "version", version, "config", "defaults")
	} else {
		logger.Info("folio starting", "version", version, "config", path)
	}

	pidLockPath := lock.PathFor(cfg.State.Path)
	pidLock, err := lock.Acquire(pidLockPath)
	if err != nil {
		if pid, ok := lock.Owner(pidLockPath); ok && errors.Is(err, lock.ErrHeld) {
			logger.Error("another instance is running", "path", pidLockPath, "pid", pid)
		} else {
			logger.Error("failed to acquire PID lock", "path", pidLockPath, "error", err)
		}
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLockPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.State.Path, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.State.Path)

	store := storage.NewDeliveryStore(db)
	hub := events.NewHub(events.DefaultCapacity)

	hookConfig, err := webhook.FromGlobalConfig(&cfg.Webhook)
	if err != nil {
		logger.Error("failed to configure webhook checker", "error", err)
		return 1
	}
	if hookConfig.Secret == "" {
		logger.Warn("webhook secret is not configured, every delivery will be unauthorised", "env", config.SecretEnvVar)
	}
	hooks := webhook.New(hookConfig, store, hub, log.WithComponent("webhook"))

	services := status.NewHandler(status.NewChecker(cfg.Services.Threshold()), hub, log.WithComponent("status"))
	articles, docs := renderers(cfg, log.Get())

	if cfg.Server.AdminToken == "" {
		logger.Warn("admin token is not configured, /admin routes reject every request")
	}
	server := api.New(api.Config{
		Listen:         cfg.Server.Listen,
		AdminToken:     cfg.Server.AdminToken,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ArticlePath:    cfg.Content.Article,
		StaticDir:      cfg.Content.StaticDir,
		Site:           cfg.Site,
	}, hooks, services, articles, docs, store, hub, log.WithComponent("api"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("api: %w", err)
			return
		}
		errCh <- nil
	}()

	logger.Info("folio running (press Ctrl+C to stop)", "listen", cfg.Server.Listen)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		if err := <-errCh; err != nil {
			logger.Error("shutdown failed", "error", err)
			return 1
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			return 1
		}
	}

	logger.Info("folio stopped")
	return 0
}
