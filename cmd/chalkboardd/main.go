package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"chalkboard/internal/config"
	"chalkboard/internal/daemon"
	"chalkboard/internal/jobs"
	"chalkboard/internal/logging"
	"chalkboard/internal/pipeline"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open jobs store", logging.Error(err))
		return
	}

	orch, err := pipeline.New(cfg, logger, pipeline.DefaultCollaborators(cfg), store)
	if err != nil {
		logger.Error("build pipeline", logging.Error(err))
		_ = store.Close()
		return
	}

	d, err := daemon.New(cfg, store, logger, orch)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Warn("some service credentials are not configured",
			slog.Any("missing", missing))
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("chalkboardd shutting down")
}
