package organizer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cdrip/internal/logging"
	"cdrip/internal/services"
)

func makeAlbum(t *testing.T, sessionDir, name string) string {
	t.Helper()
	albumDir := filepath.Join(sessionDir, "flac", name)
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatalf("mkdir album: %v", err)
	}
	if err := os.WriteFile(filepath.Join(albumDir, "01-track.flac"), []byte("flac"), 0o644); err != nil {
		t.Fatalf("write track: %v", err)
	}
	return albumDir
}

func TestFindAlbumDir(t *testing.T) {
	session := t.TempDir()
	want := makeAlbum(t, session, "The Wall")

	got, err := FindAlbumDir(session)
	if err != nil {
		t.Fatalf("FindAlbumDir: %v", err)
	}
	if got != want {
		t.Fatalf("FindAlbumDir = %q, want %q", got, want)
	}
}

func TestFindAlbumDirMissingFlacDir(t *testing.T) {
	_, err := FindAlbumDir(t.TempDir())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindAlbumDirNoSubdirectory(t *testing.T) {
	session := t.TempDir()
	if err := os.MkdirAll(filepath.Join(session, "flac"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(session, "flac", "stray.log"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := FindAlbumDir(session)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRelocateMovesAlbum(t *testing.T) {
	session := t.TempDir()
	musicDir := filepath.Join(t.TempDir(), "flac")
	albumDir := makeAlbum(t, session, "Kind of Blue")

	org := New(musicDir, logging.NewNop())
	final, err := org.Relocate(albumDir)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if final != filepath.Join(musicDir, "Kind of Blue") {
		t.Fatalf("final = %q", final)
	}
	if _, err := os.Stat(filepath.Join(final, "01-track.flac")); err != nil {
		t.Fatalf("track missing after move: %v", err)
	}
	if _, err := os.Stat(albumDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source album still present: %v", err)
	}
}

func TestRelocateCollisionSuffixesTimestamp(t *testing.T) {
	session := t.TempDir()
	musicDir := t.TempDir()
	albumDir := makeAlbum(t, session, "The Wall")

	existing := filepath.Join(musicDir, "The Wall")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatalf("mkdir existing: %v", err)
	}
	marker := filepath.Join(existing, "keep.flac")
	if err := os.WriteFile(marker, []byte("original"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	fixed := time.Unix(1700000000, 0)
	org := New(musicDir, logging.NewNop()).WithClock(func() time.Time { return fixed })

	final, err := org.Relocate(albumDir)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if final != filepath.Join(musicDir, "The Wall-1700000000") {
		t.Fatalf("final = %q, want timestamp suffix", final)
	}

	// The original album must be untouched.
	data, err := os.ReadFile(marker)
	if err != nil || string(data) != "original" {
		t.Fatalf("existing album modified: %v %q", err, data)
	}
}

func TestRelocateCreatesMusicDir(t *testing.T) {
	session := t.TempDir()
	musicDir := filepath.Join(t.TempDir(), "nested", "flac")
	albumDir := makeAlbum(t, session, "Blue Train")

	org := New(musicDir, logging.NewNop())
	if _, err := org.Relocate(albumDir); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
}

func TestCopyTreeFallback(t *testing.T) {
	src := t.TempDir()
	if err := os.MkdirAll(filepath.Join(src, "inner"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, "inner", "a.flac"), []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copied")
	if err := copyTree(src, dst); err != nil {
		t.Fatalf("copyTree: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "inner", "a.flac"))
	if err != nil || string(data) != "data" {
		t.Fatalf("copied content mismatch: %v %q", err, data)
	}
}
