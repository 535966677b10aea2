// Package ffmpeg wraps the ffmpeg binary for the final audio/video combine.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"chalkboard/internal/avsync"
	"chalkboard/internal/services"
)

// atempo accepts factors in [0.5, 2.0] per filter instance; factors outside
// that range are expressed as a chain of in-range filters.
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// Combine muxes the rendered video with the synthesized audio, applying the
// sync plan's time-stretch when requested. Video is stream-copied, audio is
// re-encoded to AAC, and output stops at the shorter input.
func Combine(ctx context.Context, binary, videoPath, audioPath string, plan avsync.Plan, outPath string) error {
	args, err := buildArgs(videoPath, audioPath, plan, outPath)
	if err != nil {
		return err
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "ffmpeg",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

func buildArgs(videoPath, audioPath string, plan avsync.Plan, outPath string) ([]string, error) {
	videoPath = strings.TrimSpace(videoPath)
	audioPath = strings.TrimSpace(audioPath)
	outPath = strings.TrimSpace(outPath)
	if videoPath == "" || audioPath == "" || outPath == "" {
		return nil, errors.New("ffmpeg combine: video, audio, and output paths are required")
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
	}
	if plan.ApplyStretch {
		filter, err := atempoChain(plan.SpeedFactor)
		if err != nil {
			return nil, err
		}
		args = append(args, "-filter:a", filter)
	}
	args = append(args,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"-y", outPath,
	)
	return args, nil
}

// atempoChain decomposes a speed factor into one or more atempo filters, each
// within ffmpeg's accepted range.
func atempoChain(factor float64) (string, error) {
	if factor <= 0 {
		return "", fmt.Errorf("ffmpeg combine: invalid speed factor %v", factor)
	}
	var parts []string
	remaining := factor
	for remaining > atempoMax {
		parts = append(parts, formatAtempo(atempoMax))
		remaining /= atempoMax
	}
	for remaining < atempoMin {
		parts = append(parts, formatAtempo(atempoMin))
		remaining /= atempoMin
	}
	parts = append(parts, formatAtempo(remaining))
	return strings.Join(parts, ","), nil
}

func formatAtempo(factor float64) string {
	return "atempo=" + strconv.FormatFloat(factor, 'f', -1, 64)
}
