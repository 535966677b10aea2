// Package avsync reconciles two independently produced media tracks of
// different length without re-rendering either.
package avsync

import (
	"math"

	"chalkboard/internal/services"
)

// stretchTolerance is the dead-zone around a 1.0 speed factor. Mismatches at
// or below 10% are tolerated: time-stretching that little is perceptually
// worse than a short trailing silence or video tail. The comparison is a
// strict greater-than, so a factor of exactly 1.10 is NOT stretched.
const stretchTolerance = 0.1

// Plan is the timing-adjustment decision for one request. Immutable once
// computed; the mux stage consumes it as-is.
type Plan struct {
	ReferenceDuration float64
	CandidateDuration float64
	SpeedFactor       float64
	ApplyStretch      bool
}

// Compute derives the sync plan from the rendered video duration (reference)
// and the synthesized audio duration (candidate). The speed factor is the
// ratio audio/video: above 1 the audio is longer and must be sped up, below 1
// it must be slowed down.
func Compute(videoDuration, audioDuration float64) (Plan, error) {
	if !durationUsable(videoDuration) {
		return Plan{}, services.Wrap(services.ErrUnavailable, "sync", "plan", "video duration unreadable", nil)
	}
	if !durationUsable(audioDuration) {
		return Plan{}, services.Wrap(services.ErrUnavailable, "sync", "plan", "audio duration unreadable", nil)
	}

	factor := audioDuration / videoDuration
	return Plan{
		ReferenceDuration: videoDuration,
		CandidateDuration: audioDuration,
		SpeedFactor:       factor,
		ApplyStretch:      math.Abs(factor-1.0) > stretchTolerance,
	}, nil
}

func durationUsable(seconds float64) bool {
	return seconds > 0 && !math.IsNaN(seconds) && !math.IsInf(seconds, 0)
}
