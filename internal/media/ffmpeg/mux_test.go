package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chalkboard/internal/avsync"
	"chalkboard/internal/services"
)

func TestBuildArgsNoStretch(t *testing.T) {
	plan := avsync.Plan{SpeedFactor: 1.02, ApplyStretch: false}
	args, err := buildArgs("v.mp4", "a.wav", plan, "out.mp4")
	if err != nil {
		t.Fatalf("build args: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "atempo") {
		t.Fatalf("expected no audio filter, got %q", joined)
	}
	for _, want := range []string{"-c:v copy", "-c:a aac", "-shortest", "-y out.mp4"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
}

func TestBuildArgsWithStretch(t *testing.T) {
	plan := avsync.Plan{SpeedFactor: 1.25, ApplyStretch: true}
	args, err := buildArgs("v.mp4", "a.wav", plan, "out.mp4")
	if err != nil {
		t.Fatalf("build args: %v", err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-filter:a atempo=1.25") {
		t.Fatalf("expected atempo filter, got %q", joined)
	}
}

func TestBuildArgsRequiresPaths(t *testing.T) {
	if _, err := buildArgs("", "a.wav", avsync.Plan{}, "out.mp4"); err == nil {
		t.Fatal("expected error for missing video path")
	}
}

func TestAtempoChainWithinRange(t *testing.T) {
	chain, err := atempoChain(1.5)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if chain != "atempo=1.5" {
		t.Fatalf("unexpected chain: %q", chain)
	}
}

func TestAtempoChainAboveRange(t *testing.T) {
	chain, err := atempoChain(3.0)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if chain != "atempo=2,atempo=1.5" {
		t.Fatalf("unexpected chain: %q", chain)
	}
}

func TestAtempoChainBelowRange(t *testing.T) {
	chain, err := atempoChain(0.25)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if chain != "atempo=0.5,atempo=0.5" {
		t.Fatalf("unexpected chain: %q", chain)
	}
}

func TestAtempoChainRejectsNonPositive(t *testing.T) {
	if _, err := atempoChain(0); err == nil {
		t.Fatal("expected error for zero factor")
	}
}

func TestCombineWrapsFailure(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "ffmpeg-fail")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\necho boom >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	err := Combine(context.Background(), binary, "v.mp4", "a.wav", avsync.Plan{SpeedFactor: 1}, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestCombineSucceedsWithStub(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "ffmpeg-ok")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if err := Combine(context.Background(), binary, "v.mp4", "a.wav", avsync.Plan{SpeedFactor: 1}, filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("combine: %v", err)
	}
}
