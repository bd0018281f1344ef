package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Run holds the state shared by one publishing invocation: the scratch
// directory where fetched images land and the access token fetched lazily on
// first upload. A Run is created per invocation and passed down explicitly;
// nothing here lives in package state.
type Run struct {
	ScratchDir string

	mu    sync.Mutex
	token string
}

// NewRun creates a Run backed by a fresh scratch directory. The directory is
// kept after the run finishes so a failed upload can be inspected; call
// RemoveAll to discard it.
func NewRun() (*Run, error) {
	dir, err := os.MkdirTemp("", "baoyu-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Run{ScratchDir: dir}, nil
}

// ScratchPath returns the location of name inside the scratch directory.
func (r *Run) ScratchPath(name string) string {
	return filepath.Join(r.ScratchDir, name)
}

// Token returns the access token for this run, calling fetch on first use.
// The token is fetched once and shared by every upload in the run; a fetch
// failure is returned uncached so the next call retries.
func (r *Run) Token(ctx context.Context, fetch func(context.Context) (string, error)) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		return r.token, nil
	}

	token, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	r.token = token
	return token, nil
}

// RemoveAll deletes the scratch directory and everything in it.
func (r *Run) RemoveAll() error {
	return os.RemoveAll(r.ScratchDir)
}
