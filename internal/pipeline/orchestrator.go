// Package pipeline sequences a topic through content generation, rendering,
// speech synthesis, synchronization, muxing, and publishing. Generation
// stages degrade to deterministic fallbacks; media stages are fatal.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chalkboard/internal/avsync"
	"chalkboard/internal/config"
	"chalkboard/internal/jobs"
	"chalkboard/internal/logging"
	"chalkboard/internal/services"
	"chalkboard/internal/services/manim"
	"chalkboard/internal/textutil"
	"chalkboard/internal/workspace"
)

const publishFolder = "educational_videos"

// Orchestrator drives one generation run end to end. Safe for concurrent
// use; each run gets its own workspace and job row.
type Orchestrator struct {
	cfg        *config.Config
	logger     *slog.Logger
	collab     Collaborators
	store      *jobs.Store
	workspaces *workspace.Manager
	runner     *StageRunner
	now        func() time.Time
	newID      func() string
}

// New constructs an orchestrator. The store may be nil when history
// persistence is not wanted (tests, one-shot CLI use).
func New(cfg *config.Config, logger *slog.Logger, collab Collaborators, store *jobs.Store) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if err := collab.validate(); err != nil {
		return nil, fmt.Errorf("collaborators: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	manager, err := workspace.NewManager(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("workspace manager: %w", err)
	}
	return &Orchestrator{
		cfg:        cfg,
		logger:     logger.With(slog.String(logging.FieldComponent, "pipeline")),
		collab:     collab,
		store:      store,
		workspaces: manager,
		runner:     NewStageRunner(logger),
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// Generate runs the full pipeline for one topic. On success the returned
// Result carries the published URL; on failure the error is a *StageError
// naming the stage that died. The workspace is removed on every path.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, &StageError{Stage: "input", Kind: KindInputInvalid, Err: errors.New("topic must not be empty")}
	}

	started := o.now()
	requestID := o.newID()
	slug := textutil.Slug(topic)
	ctx = services.WithRequestID(ctx, requestID)
	ctx = services.WithTopic(ctx, topic)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("generation started", slog.String("slug", slug))

	if o.store != nil {
		if _, err := o.store.Create(ctx, requestID, topic, slug); err != nil {
			return nil, &StageError{Stage: "input", Kind: KindInternal, Err: err}
		}
	}

	ws, err := o.workspaces.Acquire(requestID)
	if err != nil {
		return nil, o.fail(ctx, requestID, "workspace", err)
	}
	defer func() {
		if releaseErr := ws.Release(); releaseErr != nil {
			logger.Warn("workspace release failed", logging.Error(releaseErr))
		}
	}()

	result := &Result{RequestID: requestID, Topic: topic, Slug: slug}

	// Generation stages: a failure degrades to a deterministic fallback so
	// a flaky text service can never sink the run.
	points := o.generatePoints(ctx, topic, result)
	script := o.generateScript(ctx, topic, points, result)
	program := o.generateProgram(ctx, topic, points, result)
	result.Points = points
	result.Script = script

	programPath, err := ws.WriteFile("scene.py", []byte(program))
	if err != nil {
		return nil, o.fail(ctx, requestID, "render", err)
	}
	videoPath := ws.Path("video.mp4")
	audioPath := ws.Path("narration.mp3")
	finalPath := ws.Path("final.mp4")

	// Media stages: fatal from here on.
	o.setStatus(ctx, requestID, jobs.StatusRendering)
	err = o.runner.Run(ctx, "render", o.seconds(o.cfg.Render.TimeoutSeconds), func(ctx context.Context) error {
		return o.collab.Renderer.Render(ctx, programPath, videoPath)
	})
	if err != nil {
		return nil, o.fail(ctx, requestID, "render", err)
	}

	o.setStatus(ctx, requestID, jobs.StatusSynthesizing)
	err = o.runner.Run(ctx, "speech", o.seconds(o.cfg.Pipeline.SpeechTimeoutSeconds), func(ctx context.Context) error {
		return o.collab.Speech.Synthesize(ctx, script, audioPath)
	})
	if err != nil {
		return nil, o.fail(ctx, requestID, "speech", err)
	}

	o.setStatus(ctx, requestID, jobs.StatusSyncing)
	plan, err := o.computePlan(ctx, videoPath, audioPath)
	if err != nil {
		return nil, o.fail(ctx, requestID, "sync", err)
	}
	result.SpeedFactor = plan.SpeedFactor
	result.StretchApplied = plan.ApplyStretch
	if o.store != nil {
		if err := o.store.SetSync(ctx, requestID, plan.SpeedFactor, plan.ApplyStretch); err != nil {
			logger.Warn("record sync outcome failed", logging.Error(err))
		}
	}

	err = o.runner.Run(ctx, "mux", o.seconds(o.cfg.Media.MuxTimeoutSeconds), func(ctx context.Context) error {
		return o.collab.Muxer.Combine(ctx, videoPath, audioPath, plan, finalPath)
	})
	if err != nil {
		return nil, o.fail(ctx, requestID, "mux", err)
	}

	o.setStatus(ctx, requestID, jobs.StatusPublishing)
	publicID := fmt.Sprintf("%s/%s_%s", publishFolder, slug, o.now().UTC().Format("20060102_150405"))
	var videoURL string
	err = o.runner.Run(ctx, "publish", o.seconds(o.cfg.Pipeline.PublishTimeoutSeconds), func(ctx context.Context) error {
		var uploadErr error
		videoURL, uploadErr = o.collab.Publisher.Upload(ctx, finalPath, publicID)
		return uploadErr
	})
	if err != nil {
		return nil, o.fail(ctx, requestID, "publish", err)
	}
	result.PublicID = publicID
	result.VideoURL = videoURL
	result.Elapsed = o.now().Sub(started)

	if o.store != nil {
		if err := o.store.MarkCompleted(ctx, requestID, publicID, videoURL); err != nil {
			logger.Warn("record completion failed", logging.Error(err))
		}
	}
	logger.Info("generation completed",
		slog.String("public_id", publicID),
		slog.String("video_url", videoURL),
		slog.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (o *Orchestrator) generatePoints(ctx context.Context, topic string, result *Result) []string {
	o.setStatus(ctx, requestIDFrom(ctx), jobs.StatusGeneratingContent)
	var points []string
	err := o.runner.Run(ctx, "content", o.seconds(o.cfg.Pipeline.ContentTimeoutSeconds), func(ctx context.Context) error {
		var genErr error
		points, genErr = o.collab.Content.Points(ctx, topic)
		return genErr
	})
	if err != nil || len(points) == 0 {
		o.noteFallback(ctx, result, "content", err)
		return FallbackPoints(topic)
	}
	return points
}

func (o *Orchestrator) generateScript(ctx context.Context, topic string, points []string, result *Result) string {
	o.setStatus(ctx, requestIDFrom(ctx), jobs.StatusGeneratingScript)
	var script string
	err := o.runner.Run(ctx, "script", o.seconds(o.cfg.Pipeline.ScriptTimeoutSeconds), func(ctx context.Context) error {
		var genErr error
		script, genErr = o.collab.Script.Script(ctx, topic, points)
		return genErr
	})
	if err != nil || script == "" {
		o.noteFallback(ctx, result, "script", err)
		return FallbackScript(topic, points)
	}
	return script
}

func (o *Orchestrator) generateProgram(ctx context.Context, topic string, points []string, result *Result) string {
	o.setStatus(ctx, requestIDFrom(ctx), jobs.StatusGeneratingProgram)
	var program string
	err := o.runner.Run(ctx, "program", o.seconds(o.cfg.Pipeline.ProgramTimeoutSeconds), func(ctx context.Context) error {
		var genErr error
		program, genErr = o.collab.Program.Program(ctx, topic, points)
		return genErr
	})
	if err != nil || program == "" {
		o.noteFallback(ctx, result, "program", err)
		return manim.FallbackProgram(topic, points)
	}
	return program
}

func (o *Orchestrator) computePlan(ctx context.Context, videoPath, audioPath string) (avsync.Plan, error) {
	var plan avsync.Plan
	err := o.runner.Run(ctx, "sync", o.seconds(o.cfg.Media.ProbeTimeout), func(ctx context.Context) error {
		videoDuration, probeErr := o.collab.Prober.Duration(ctx, videoPath)
		if probeErr != nil {
			return probeErr
		}
		audioDuration, probeErr := o.collab.Prober.Duration(ctx, audioPath)
		if probeErr != nil {
			return probeErr
		}
		var computeErr error
		plan, computeErr = avsync.Compute(videoDuration, audioDuration)
		return computeErr
	})
	return plan, err
}

func (o *Orchestrator) noteFallback(ctx context.Context, result *Result, stage string, err error) {
	result.FallbackUsed = true
	logger := logging.WithContext(ctx, o.logger)
	logger.Warn("stage degraded to fallback",
		slog.String(logging.FieldStage, stage),
		logging.Error(err),
	)
	if o.store != nil {
		if storeErr := o.store.SetFallbackUsed(ctx, requestIDFrom(ctx)); storeErr != nil {
			logger.Warn("record fallback flag failed", logging.Error(storeErr))
		}
	}
}

func (o *Orchestrator) setStatus(ctx context.Context, requestID string, status jobs.Status) {
	if o.store == nil || requestID == "" {
		return
	}
	if err := o.store.SetStatus(ctx, requestID, status); err != nil {
		logging.WithContext(ctx, o.logger).Warn("record status failed",
			slog.String("status", string(status)), logging.Error(err))
	}
}

// fail finalizes a run as failed and wraps the error with its stage.
func (o *Orchestrator) fail(ctx context.Context, requestID, stage string, err error) error {
	if o.store != nil && requestID != "" {
		message := services.Details(err).Message
		if markErr := o.store.MarkFailed(ctx, requestID, message); markErr != nil {
			logging.WithContext(ctx, o.logger).Warn("record failure failed", logging.Error(markErr))
		}
	}
	return &StageError{Stage: stage, Kind: classify(err), Err: err}
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, services.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, services.ErrExternalTool),
		errors.Is(err, services.ErrUnavailable),
		errors.Is(err, services.ErrTransient):
		return KindExternal
	case errors.Is(err, services.ErrValidation):
		return KindInputInvalid
	default:
		return KindInternal
	}
}

func (o *Orchestrator) seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func requestIDFrom(ctx context.Context) string {
	id, _ := services.RequestIDFromContext(ctx)
	return id
}
