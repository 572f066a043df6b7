package services_test

import (
	"errors"
	"fmt"
	"testing"

	"cdrip/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ripping", "run abcde", "abcde failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "relocating", "find album", "no album directory", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	want := "not found: relocating: find album: no album directory"
	if err.Error() != want {
		t.Fatalf("Wrap message = %q, want %q", err.Error(), want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("nope"), 1},
		{"exit code error", &services.ExitCodeError{Tool: "abcde", Code: 3}, 3},
		{"wrapped exit code", fmt.Errorf("outer: %w", &services.ExitCodeError{Tool: "abcde", Code: 2}), 2},
		{"zero code falls back", &services.ExitCodeError{Tool: "abcde", Code: 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
