package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"cdrip/internal/logging"
	"cdrip/internal/services"
)

// Organizer moves ripped albums from a session directory into the music
// library.
type Organizer struct {
	musicDir string
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs an organizer targeting the given music directory.
func New(musicDir string, logger *slog.Logger) *Organizer {
	return &Organizer{
		musicDir: musicDir,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		now:      time.Now,
	}
}

// WithClock overrides the collision-suffix clock (used in tests).
func (o *Organizer) WithClock(now func() time.Time) *Organizer {
	if now != nil {
		o.now = now
	}
	return o
}

// FindAlbumDir locates the single album directory produced by the ripper
// under <sessionDir>/flac. Absence is fatal and classified as not found so
// the workflow can treat it like a ripper failure.
func FindAlbumDir(sessionDir string) (string, error) {
	flacDir := filepath.Join(sessionDir, "flac")
	entries, err := os.ReadDir(flacDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "relocating", "find album", "ripper produced no flac directory", nil)
		}
		return "", fmt.Errorf("read %s: %w", flacDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return filepath.Join(flacDir, entry.Name()), nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "relocating", "find album", "no album directory in rip output", nil)
}

// Relocate moves albumDir into the music directory. An existing directory
// with the same name is never touched; the incoming album is renamed with a
// unix-timestamp suffix instead. Returns the final album path.
func (o *Organizer) Relocate(albumDir string) (string, error) {
	name := filepath.Base(albumDir)
	if err := os.MkdirAll(o.musicDir, 0o755); err != nil {
		return "", fmt.Errorf("create music directory: %w", err)
	}

	target := filepath.Join(o.musicDir, name)
	if _, err := os.Stat(target); err == nil {
		suffixed := fmt.Sprintf("%s-%d", name, o.now().Unix())
		o.logger.Info("album name collision, suffixing",
			logging.String("album", name),
			logging.String("renamed", suffixed),
		)
		target = filepath.Join(o.musicDir, suffixed)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", target, err)
	}

	if err := moveDir(albumDir, target); err != nil {
		return "", fmt.Errorf("move album to %s: %w", target, err)
	}
	o.logger.Info("moved album", logging.String("final_path", target))
	return target, nil
}

// moveDir renames src to dst, falling back to copy-and-remove when the two
// paths live on different filesystems.
func moveDir(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyTree(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// copyFile copies a file from src to dst, verifying the copied size.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		return err
	}
	if dstInfo.Size() != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), dstInfo.Size())
	}
	return nil
}

// MusicDir returns the configured destination root.
func (o *Organizer) MusicDir() string {
	return strings.TrimSpace(o.musicDir)
}
