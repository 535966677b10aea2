package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Request describes one generation run. Topic is the only user input; every
// other artifact is derived from it.
type Request struct {
	Topic string
}

// Result is the outcome of a completed run.
type Result struct {
	RequestID      string
	Topic          string
	Slug           string
	Points         []string
	Script         string
	SpeedFactor    float64
	StretchApplied bool
	FallbackUsed   bool
	PublicID       string
	VideoURL       string
	Elapsed        time.Duration
}

// FailureKind classifies a stage failure for callers that map errors onto
// API responses or exit codes.
type FailureKind string

const (
	KindInputInvalid FailureKind = "input_invalid"
	KindExternal     FailureKind = "external"
	KindTimeout      FailureKind = "timeout"
	KindInternal     FailureKind = "internal"
)

// StageError reports which stage a run died in and why. Recoverable stages
// never produce one; only fatal stages do.
type StageError struct {
	Stage string
	Kind  FailureKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AsStageError extracts a StageError from an error chain.
func AsStageError(err error) (*StageError, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr, true
	}
	return nil, false
}
