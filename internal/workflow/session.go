package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is the scoped scratch directory for one rip invocation. The
// directory name combines device, process id, and timestamp so overlapping
// or retried invocations never collide on the filesystem.
type Session struct {
	Dir string
}

// NewSession creates the base scratch root if absent and a unique session
// directory beneath it.
func NewSession(baseDir, device string, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create rip directory: %w", err)
	}
	dir := filepath.Join(baseDir, fmt.Sprintf("%s-%d-%d", device, os.Getpid(), now().Unix()))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &Session{Dir: dir}, nil
}

// Cleanup removes the session directory and everything beneath it. Safe to
// call when the directory is already gone.
func (s *Session) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}
	return nil
}
