package uploader_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cdrip/internal/logging"
	"cdrip/internal/services"
	"cdrip/internal/uploader"
)

type fakeExecutor struct {
	escapeOut []byte
	escapeErr error
	runErr    error

	outputCalls [][]string
	runCalls    [][]string
}

func (f *fakeExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.outputCalls = append(f.outputCalls, append([]string{binary}, args...))
	return f.escapeOut, f.escapeErr
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) error {
	f.runCalls = append(f.runCalls, append([]string{binary}, args...))
	return f.runErr
}

func TestStartEscapesAndStartsUnit(t *testing.T) {
	exec := &fakeExecutor{escapeOut: []byte("srv-ripped\\x2dmusic-flac-The\\x20Wall\n")}
	trigger := uploader.New("copyparty-upload@%s.service", logging.NewNop(), uploader.WithExecutor(exec))

	unit, err := trigger.Start(context.Background(), "/srv/ripped-music/flac/The Wall")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := "copyparty-upload@srv-ripped\\x2dmusic-flac-The\\x20Wall.service"
	if unit != want {
		t.Fatalf("unit = %q, want %q", unit, want)
	}

	if len(exec.outputCalls) != 1 || strings.Join(exec.outputCalls[0], " ") != "systemd-escape --path /srv/ripped-music/flac/The Wall" {
		t.Fatalf("escape call = %v", exec.outputCalls)
	}
	if len(exec.runCalls) != 1 || exec.runCalls[0][0] != "systemctl" || exec.runCalls[0][1] != "start" || exec.runCalls[0][2] != want {
		t.Fatalf("systemctl call = %v", exec.runCalls)
	}
}

func TestStartEscapeFailure(t *testing.T) {
	exec := &fakeExecutor{escapeErr: errors.New("no such binary")}
	trigger := uploader.New("copyparty-upload@%s.service", logging.NewNop(), uploader.WithExecutor(exec))

	_, err := trigger.Start(context.Background(), "/srv/x")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if len(exec.runCalls) != 0 {
		t.Fatalf("systemctl should not run after escape failure: %v", exec.runCalls)
	}
}

func TestStartUnitFailure(t *testing.T) {
	exec := &fakeExecutor{escapeOut: []byte("escaped"), runErr: errors.New("unit not found")}
	trigger := uploader.New("copyparty-upload@%s.service", logging.NewNop(), uploader.WithExecutor(exec))

	unit, err := trigger.Start(context.Background(), "/srv/x")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if unit != "copyparty-upload@escaped.service" {
		t.Fatalf("unit = %q", unit)
	}
}
