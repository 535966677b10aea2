package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chalkboard/internal/logging"
	"chalkboard/internal/services"
)

// StageRunner executes one pipeline stage under a deadline with uniform
// lifecycle logging. A panic inside a stage is captured and surfaced as an
// error so one bad collaborator cannot take the daemon down.
type StageRunner struct {
	logger *slog.Logger
}

// NewStageRunner constructs a runner that logs through the provided logger.
func NewStageRunner(logger *slog.Logger) *StageRunner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StageRunner{logger: logger}
}

// Run executes fn under the stage's timeout. A zero timeout means no
// deadline beyond the parent context.
func (r *StageRunner) Run(ctx context.Context, stage string, timeout time.Duration, fn func(context.Context) error) (err error) {
	stageCtx := services.WithStage(ctx, stage)
	cancel := func() {}
	if timeout > 0 {
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
	}
	defer cancel()

	logger := logging.WithContext(stageCtx, r.logger).With(
		slog.String(logging.FieldStage, stage),
	)
	logger.Info("stage starting",
		slog.String(logging.FieldEventType, "stage_start"),
	)

	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = services.Wrap(services.ErrTransient, stage, "panic", fmt.Sprintf("%v", rec), nil)
		}
		elapsed := time.Since(started)
		if err == nil {
			logger.Info("stage completed",
				slog.String(logging.FieldEventType, "stage_complete"),
				slog.Duration("elapsed", elapsed),
			)
			return
		}
		if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
			err = services.Wrap(services.ErrTimeout, stage, "deadline exceeded",
				fmt.Sprintf("after %s", timeout), err)
		}
		logger.Error("stage failed",
			slog.String(logging.FieldEventType, "stage_failure"),
			slog.Duration("elapsed", elapsed),
			logging.Error(err),
		)
	}()

	return fn(stageCtx)
}
