package services

import (
	"errors"
	"testing"
)

func TestWrapTagsSentinel(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrExternalTool, "render", "invoke manim", "renderer exited", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool tag, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to be preserved, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "publish", "upload", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient default, got %v", err)
	}
}

func TestDetailsStripsSentinelPrefix(t *testing.T) {
	err := Wrap(ErrTimeout, "speech", "synthesize", "deadline exceeded", nil)
	details := Details(err)
	if details.Message != "speech: synthesize: deadline exceeded" {
		t.Fatalf("unexpected details message: %q", details.Message)
	}
}

func TestDetailsNilError(t *testing.T) {
	if got := Details(nil); got.Message != "" {
		t.Fatalf("expected empty message, got %q", got.Message)
	}
}
