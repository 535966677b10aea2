package pipeline

import (
	"context"
	"errors"

	"chalkboard/internal/avsync"
	"chalkboard/internal/config"
	"chalkboard/internal/media/ffmpeg"
	"chalkboard/internal/media/ffprobe"
	"chalkboard/internal/services/cloudinary"
	"chalkboard/internal/services/elevenlabs"
	"chalkboard/internal/services/gemini"
	"chalkboard/internal/services/manim"
)

// ContentGenerator produces the three content points for a topic.
type ContentGenerator interface {
	Points(ctx context.Context, topic string) ([]string, error)
}

// ScriptGenerator produces the narration script.
type ScriptGenerator interface {
	Script(ctx context.Context, topic string, points []string) (string, error)
}

// ProgramGenerator produces the animation program text.
type ProgramGenerator interface {
	Program(ctx context.Context, topic string, points []string) (string, error)
}

// Renderer turns a program file into a silent video file.
type Renderer interface {
	Render(ctx context.Context, programPath, outPath string) error
}

// SpeechSynthesizer turns the script into an audio file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Prober reads the playable duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Muxer combines the video and audio tracks according to a sync plan.
type Muxer interface {
	Combine(ctx context.Context, videoPath, audioPath string, plan avsync.Plan, outPath string) error
}

// Publisher uploads the finished video and returns its public URL.
type Publisher interface {
	Upload(ctx context.Context, path, publicID string) (string, error)
}

// Collaborators bundles every external capability the orchestrator drives.
// The orchestrator owns sequencing and failure policy; collaborators own the
// mechanics of each stage.
type Collaborators struct {
	Content   ContentGenerator
	Script    ScriptGenerator
	Program   ProgramGenerator
	Renderer  Renderer
	Speech    SpeechSynthesizer
	Prober    Prober
	Muxer     Muxer
	Publisher Publisher
}

func (c Collaborators) validate() error {
	switch {
	case c.Content == nil:
		return errors.New("content generator required")
	case c.Script == nil:
		return errors.New("script generator required")
	case c.Program == nil:
		return errors.New("program generator required")
	case c.Renderer == nil:
		return errors.New("renderer required")
	case c.Speech == nil:
		return errors.New("speech synthesizer required")
	case c.Prober == nil:
		return errors.New("prober required")
	case c.Muxer == nil:
		return errors.New("muxer required")
	case c.Publisher == nil:
		return errors.New("publisher required")
	}
	return nil
}

// DefaultCollaborators wires the production service clients from config.
func DefaultCollaborators(cfg *config.Config) Collaborators {
	text := gemini.NewClient(cfg.Gemini)
	return Collaborators{
		Content:   text,
		Script:    text,
		Program:   text,
		Renderer:  manim.NewRenderer(cfg.Render),
		Speech:    elevenlabs.NewClient(cfg.ElevenLabs),
		Prober:    FFprobeProber{Binary: cfg.Media.FFprobeBinary},
		Muxer:     FFmpegMuxer{Binary: cfg.Media.FFmpegBinary},
		Publisher: cloudinary.NewClient(cfg.Cloudinary),
	}
}

// FFprobeProber probes durations with the configured ffprobe binary.
type FFprobeProber struct {
	Binary string
}

func (p FFprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	return ffprobe.Duration(ctx, p.Binary, path)
}

// FFmpegMuxer muxes tracks with the configured ffmpeg binary.
type FFmpegMuxer struct {
	Binary string
}

func (m FFmpegMuxer) Combine(ctx context.Context, videoPath, audioPath string, plan avsync.Plan, outPath string) error {
	return ffmpeg.Combine(ctx, m.Binary, videoPath, audioPath, plan, outPath)
}
