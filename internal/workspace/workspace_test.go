package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireWriteRelease(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	ws, err := mgr.Acquire("req-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	path, err := ws.WriteFile("scene.py", []byte("from manim import *"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}

	if err := ws.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err = %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ws, err := mgr.Acquire("req-2")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
}

func TestWriteAfterReleaseFails(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	ws, err := mgr.Acquire("req-3")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := ws.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := ws.WriteFile("audio.wav", nil); err == nil {
		t.Fatal("expected write after release to fail")
	}
}

func TestWorkspacesAreIsolated(t *testing.T) {
	root := t.TempDir()
	mgr, err := NewManager(root)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	a, err := mgr.Acquire("req-a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	b, err := mgr.Acquire("req-a")
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	if a.Dir() == b.Dir() {
		t.Fatal("expected distinct workspace directories")
	}
	if _, err := a.WriteFile("video.mp4", []byte("x")); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("release b: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Dir(), "video.mp4")); err != nil {
		t.Fatalf("sibling release must not remove other workspace: %v", err)
	}
}

func TestManagerRequiresRoot(t *testing.T) {
	if _, err := NewManager("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}
