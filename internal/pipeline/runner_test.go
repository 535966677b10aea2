package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"chalkboard/internal/logging"
	"chalkboard/internal/services"
)

func TestRunnerPassesThroughSuccess(t *testing.T) {
	runner := NewStageRunner(logging.NewNop())
	ran := false
	err := runner.Run(context.Background(), "content", time.Second, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("stage function not invoked")
	}
}

func TestRunnerAppliesTimeout(t *testing.T) {
	runner := NewStageRunner(logging.NewNop())
	err := runner.Run(context.Background(), "render", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRunnerZeroTimeoutMeansNoDeadline(t *testing.T) {
	runner := NewStageRunner(logging.NewNop())
	err := runner.Run(context.Background(), "content", 0, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			t.Error("unexpected deadline on stage context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunnerCapturesPanic(t *testing.T) {
	runner := NewStageRunner(logging.NewNop())
	err := runner.Run(context.Background(), "program", time.Second, func(ctx context.Context) error {
		panic("collaborator exploded")
	})
	if err == nil {
		t.Fatal("expected error from panicking stage")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestRunnerAnnotatesStageContext(t *testing.T) {
	runner := NewStageRunner(logging.NewNop())
	err := runner.Run(context.Background(), "speech", time.Second, func(ctx context.Context) error {
		stage, ok := services.StageFromContext(ctx)
		if !ok || stage != "speech" {
			t.Errorf("unexpected stage in context: %q %v", stage, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}
