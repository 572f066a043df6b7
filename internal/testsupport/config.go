package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"cdrip/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RipDir = filepath.Join(base, "ripping")
	cfgVal.Paths.MusicDir = filepath.Join(base, "flac")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDevice overrides the default optical device short name.
func WithDevice(device string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ripper.Device = device
	}
}

// WithHistory enables the history store backed by the test temp directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
		b.cfg.History.Path = filepath.Join(b.baseDir, "history.db")
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the external binaries the rip
// pipeline shells out to are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"abcde", "eject", "systemd-escape", "systemctl"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteRippedAlbum lays out <sessionDir>/flac/<album>/ with the requested
// number of dummy tracks, mirroring the ripper's output shape.
func WriteRippedAlbum(t testing.TB, sessionDir, album string, tracks int) string {
	t.Helper()

	albumDir := filepath.Join(sessionDir, "flac", album)
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatalf("mkdir album dir: %v", err)
	}
	for i := 1; i <= tracks; i++ {
		name := filepath.Join(albumDir, fmt.Sprintf("%02d.flac", i))
		if err := os.WriteFile(name, []byte("flac"), 0o644); err != nil {
			t.Fatalf("write track %s: %v", name, err)
		}
	}
	return albumDir
}
