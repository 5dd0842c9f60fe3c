// Package store is the storage boundary: it reads documents from disk, writes
// them back atomically and serializes read-modify-write cycles.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"dlcini/internal/model"
)

// ErrNoPath is returned when no document has been chosen.
var ErrNoPath = errors.New("no file selected")

const defaultPerm fs.FileMode = 0o644

// ReadText reads the document at path as text.
func ReadText(path string) (string, error) {
	if path == "" {
		return "", ErrNoPath
	}
	b, err := os.ReadFile(model.ExpandTilde(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// WriteText replaces the document at path with text. The write goes through a
// temporary file in the same directory and a rename, so readers never see a
// half-written file. An existing file keeps its permission bits.
func WriteText(path, text string) error {
	if path == "" {
		return ErrNoPath
	}
	path = model.ExpandTilde(path)

	perm := defaultPerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := atomic.WriteFile(path, bytes.NewBufferString(text)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// Session tracks the active document. It starts at a default path, changes
// when the user picks a file and is read by every operation.
type Session struct {
	mu   sync.Mutex // guards path and every Edit cycle
	path string
	log  *zap.Logger
}

// NewSession returns a session pointing at defaultPath.
func NewSession(defaultPath string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{path: defaultPath, log: log.Named("store")}
}

// Path returns the active document path.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath switches the active document. It waits for an in-flight Edit.
func (s *Session) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("document selected", zap.String("path", path))
	s.path = path
}

// Read returns the active path and its current text.
func (s *Session) Read(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	text, err := ReadText(s.path)
	return s.path, text, err
}

// Edit runs fn on the current text and writes the result back, holding the
// session lock for the whole cycle so concurrent edits cannot lose updates.
// If fn fails nothing is written. Unchanged text is not rewritten.
func (s *Session) Edit(ctx context.Context, fn func(raw string) (string, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := ReadText(s.path)
	if err != nil {
		return err
	}
	updated, err := fn(raw)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if updated == raw {
		s.log.Debug("document unchanged", zap.String("path", s.path))
		return nil
	}
	if err := WriteText(s.path, updated); err != nil {
		return err
	}
	s.log.Info("document written",
		zap.String("path", s.path),
		zap.Int("bytes_before", len(raw)),
		zap.Int("bytes_after", len(updated)),
	)
	return nil
}
