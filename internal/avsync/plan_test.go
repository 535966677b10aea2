package avsync

import (
	"errors"
	"math"
	"testing"

	"chalkboard/internal/services"
)

func TestComputeEqualDurations(t *testing.T) {
	plan, err := Compute(30, 30)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if plan.SpeedFactor != 1.0 {
		t.Fatalf("expected factor 1.0, got %v", plan.SpeedFactor)
	}
	if plan.ApplyStretch {
		t.Fatal("expected no stretch for equal durations")
	}
}

func TestComputeDoubleDuration(t *testing.T) {
	plan, err := Compute(30, 60)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if plan.SpeedFactor != 2.0 {
		t.Fatalf("expected factor 2.0, got %v", plan.SpeedFactor)
	}
	if !plan.ApplyStretch {
		t.Fatal("expected stretch for doubled audio")
	}
}

func TestComputeInsideDeadZone(t *testing.T) {
	plan, err := Compute(30, 31.5) // 5% longer audio
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if plan.ApplyStretch {
		t.Fatalf("expected no stretch at factor %v", plan.SpeedFactor)
	}
}

// The threshold comparison is a strict greater-than. At the nominal 10%
// boundary the outcome depends on which side float64 rounding lands on:
// 33/30 evaluates a hair above 1.1, so the speedup case stretches, while
// the slowdown case 27/30 evaluates a hair inside the zone.
func TestComputeBoundaryCases(t *testing.T) {
	speedup, err := Compute(30, 33)
	if err != nil {
		t.Fatalf("compute speedup: %v", err)
	}
	if math.Abs(speedup.SpeedFactor-1.1) > 1e-9 {
		t.Fatalf("expected factor ~1.1, got %v", speedup.SpeedFactor)
	}
	if !speedup.ApplyStretch {
		t.Fatal("expected stretch for audio 10% longer than video")
	}

	slowdown, err := Compute(30, 27)
	if err != nil {
		t.Fatalf("compute slowdown: %v", err)
	}
	if math.Abs(slowdown.SpeedFactor-0.9) > 1e-9 {
		t.Fatalf("expected factor ~0.9, got %v", slowdown.SpeedFactor)
	}
	if slowdown.ApplyStretch {
		t.Fatal("expected no stretch for audio 10% shorter than video")
	}
}

func TestComputeScaleCovariant(t *testing.T) {
	for _, k := range []float64{0.5, 2, 7.25} {
		base, err := Compute(30, 41)
		if err != nil {
			t.Fatalf("compute base: %v", err)
		}
		scaled, err := Compute(30*k, 41*k)
		if err != nil {
			t.Fatalf("compute scaled: %v", err)
		}
		if math.Abs(base.SpeedFactor-scaled.SpeedFactor) > 1e-12 {
			t.Fatalf("k=%v: factors diverge: %v vs %v", k, base.SpeedFactor, scaled.SpeedFactor)
		}
		if base.ApplyStretch != scaled.ApplyStretch {
			t.Fatalf("k=%v: stretch decision diverges", k)
		}
	}
}

func TestComputeUnusableDurations(t *testing.T) {
	cases := []struct {
		name  string
		video float64
		audio float64
	}{
		{"zero video", 0, 30},
		{"zero audio", 30, 0},
		{"negative video", -1, 30},
		{"nan audio", 30, math.NaN()},
		{"inf video", math.Inf(1), 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Compute(tc.video, tc.audio); !errors.Is(err, services.ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}
