// Command askmygarmin is a terminal chat client for the Ask My Garmin
// backend. It streams coaching answers about your Garmin data, renders
// Markdown and charts in the terminal, and keeps the conversation across
// sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"askmygarmin/internal/api"
	"askmygarmin/internal/history"
	"askmygarmin/internal/infra/config"
	"askmygarmin/internal/infra/logger"
	"askmygarmin/internal/infra/tracer"
	"askmygarmin/internal/tui/chat"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to config file")
		baseURL    = flag.String("server", "", "backend base URL (overrides config)")
		mode       = flag.String("mode", "", "response mode: coach or brief (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}
	if *mode != "" {
		cfg.UI.Mode = *mode
	}

	log, closeLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLogger() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	tokens := api.NewFileTokenStore(cfg.Session.TokenPath)
	client := api.NewClient(api.Config{
		BaseURL:     cfg.Server.BaseURL,
		ConnTimeout: cfg.Server.ConnTimeout,
		RespTimeout: cfg.Server.RespTimeout,
	}, tokens, log)

	var store chat.HistoryStore
	if cfg.History.Enabled {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer func() { _ = db.Close() }()
		store = db
	}

	log.Info("starting askmygarmin",
		"server", cfg.Server.BaseURL,
		"mode", cfg.UI.Mode,
		"history", cfg.History.Enabled,
	)

	app := chat.NewApp(chat.ChatModelDeps{
		Backend: client,
		History: store,
		Logger:  log,
		Mode:    cfg.UI.Mode,
	})
	return app.Run(ctx)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".askmygarmin", "config.yaml")
}
