// Package deps reports the availability of the external binaries the
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"chalkboard/internal/config"
)

// Requirement defines an external binary chalkboard relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the binary dependencies for the supplied config.
func Requirements(cfg *config.Config) []Requirement {
	manim := "manim"
	ffmpeg := "ffmpeg"
	ffprobe := "ffprobe"
	if cfg != nil {
		if cfg.Render.ManimBinary != "" {
			manim = cfg.Render.ManimBinary
		}
		if cfg.Media.FFmpegBinary != "" {
			ffmpeg = cfg.Media.FFmpegBinary
		}
		if cfg.Media.FFprobeBinary != "" {
			ffprobe = cfg.Media.FFprobeBinary
		}
	}
	return []Requirement{
		{Name: "Manim", Command: manim, Description: "animation renderer"},
		{Name: "FFmpeg", Command: ffmpeg, Description: "audio/video muxer"},
		{Name: "FFprobe", Command: ffprobe, Description: "media duration probe"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
