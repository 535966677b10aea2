// Package workspace provides the request-scoped scratch area that owns every
// intermediate artifact of one pipeline run. A Workspace is acquired at
// pipeline start and must be released on every exit path; Release removes all
// contents and is safe to call more than once.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager creates workspaces under a configured root so tests can point it at
// a temp directory instead of the real filesystem layout.
type Manager struct {
	root string
}

// NewManager constructs a workspace manager rooted at dir.
func NewManager(dir string) (*Manager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Manager{root: dir}, nil
}

// Root returns the configured workspace root.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates an exclusively-owned scratch directory for one request.
func (m *Manager) Acquire(requestID string) (*Workspace, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, errors.New("workspace acquire: request id is required")
	}
	dir, err := os.MkdirTemp(m.root, "run-"+requestID+"-")
	if err != nil {
		return nil, fmt.Errorf("workspace acquire: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Workspace is the scratch directory for a single pipeline run.
type Workspace struct {
	mu       sync.Mutex
	dir      string
	released bool
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path for a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteFile persists an artifact into the workspace and returns its path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	w.mu.Lock()
	released := w.released
	w.mu.Unlock()
	if released {
		return "", errors.New("workspace write: already released")
	}
	path := w.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("workspace write %s: %w", name, err)
	}
	return path, nil
}

// Release deletes the workspace and everything in it. Idempotent.
func (w *Workspace) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return nil
	}
	w.released = true
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("workspace release: %w", err)
	}
	return nil
}
