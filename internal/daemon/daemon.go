// Package daemon runs the long-lived chalkboard process: it enforces
// single-instance execution with a file lock and exposes the HTTP API the
// CLI talks to.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"chalkboard/internal/config"
	"chalkboard/internal/deps"
	"chalkboard/internal/jobs"
	"chalkboard/internal/logging"
	"chalkboard/internal/pipeline"
)

// Daemon coordinates the generation pipeline behind the HTTP API and
// enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *jobs.Store
	orch   *pipeline.Orchestrator

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	api     *apiServer
}

// Status represents daemon runtime information.
type Status struct {
	Running            bool
	PID                int
	JobsDBPath         string
	LockFilePath       string
	MissingCredentials []string
	Dependencies       []deps.Status
	Jobs               jobs.HealthSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *jobs.Store, logger *slog.Logger, orch *pipeline.Orchestrator) (*Daemon, error) {
	if cfg == nil || store == nil || orch == nil {
		return nil, errors.New("daemon requires config, store, and orchestrator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.LogDir, "chalkboardd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		orch:     orch,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chalkboard daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("api server: %w", err)
	}
	d.api = api
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("chalkboard daemon started", slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("chalkboard daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Generate runs one pipeline request.
func (d *Daemon) Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	return d.orch.Generate(ctx, req)
}

// ListJobs returns run history filtered by an optional status.
func (d *Daemon) ListJobs(ctx context.Context, status jobs.Status, limit int) ([]*jobs.Job, error) {
	return d.store.List(ctx, status, limit)
}

// GetJob returns a single run by request ID.
func (d *Daemon) GetJob(ctx context.Context, requestID string) (*jobs.Job, error) {
	return d.store.Get(ctx, requestID)
}

// Status reports runtime readiness: credentials, binary dependencies, and
// aggregated job counts.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:            d.running.Load(),
		PID:                os.Getpid(),
		JobsDBPath:         d.store.Path(),
		LockFilePath:       d.lockPath,
		MissingCredentials: d.cfg.MissingCredentials(),
		Dependencies:       deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
	summary, err := d.store.Summary(ctx)
	if err != nil {
		d.logger.Warn("job summary failed", logging.Error(err))
	} else {
		status.Jobs = summary
	}
	return status
}
