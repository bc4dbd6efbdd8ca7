package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/config"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/logging"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.ServiceName,
		Version: serviceVersion(cfg),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logging.Error(logger, "server setup failed", err)
		os.Exit(1)
	}
	srv.Run(ctx, stop)
}

// serviceVersion prefers the VERSION env value over the build default.
func serviceVersion(cfg config.Config) string {
	if cfg.Version != "" {
		return cfg.Version
	}
	return appVersion
}
