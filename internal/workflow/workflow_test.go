package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/history"
	"cdrip/internal/logging"
	"cdrip/internal/notify"
	"cdrip/internal/services"
	"cdrip/internal/services/abcde"
	"cdrip/internal/testsupport"
	"cdrip/internal/workflow"
)

const ripOutput = `Retrieved 1 CDDB match...done.
#1 (CD): ---- Pink Floyd / The Wall ----
Downloading cover art...
cover URL: https://example.com/cover.jpg
Finished.`

type fakeRipClient struct {
	t       *testing.T
	output  string
	err     error
	album   string
	calls   int
	lastDir string
}

func (f *fakeRipClient) Rip(ctx context.Context, devicePath, outputDir string) (string, error) {
	f.calls++
	f.lastDir = outputDir
	if f.album != "" {
		testsupport.WriteRippedAlbum(f.t, outputDir, f.album, 2)
	}
	return f.output, f.err
}

type notification struct {
	kind     string
	device   string
	meta     abcde.Metadata
	exitCode int
	album    string
}

type fakeNotifier struct {
	events []notification
}

func (f *fakeNotifier) NotifyRipStarted(_ context.Context, device string) notify.Delivery {
	f.events = append(f.events, notification{kind: "started", device: device})
	return notify.Delivery{Sent: true}
}

func (f *fakeNotifier) NotifyRipCompleted(_ context.Context, meta abcde.Metadata, device string) notify.Delivery {
	f.events = append(f.events, notification{kind: "completed", device: device, meta: meta})
	return notify.Delivery{Sent: true}
}

func (f *fakeNotifier) NotifyRipFailed(_ context.Context, device string, exitCode int) notify.Delivery {
	f.events = append(f.events, notification{kind: "failed", device: device, exitCode: exitCode})
	return notify.Delivery{Sent: true}
}

func (f *fakeNotifier) NotifyUploadFailed(_ context.Context, device, album string) notify.Delivery {
	f.events = append(f.events, notification{kind: "upload_failed", device: device, album: album})
	return notify.Delivery{Sent: true}
}

func (f *fakeNotifier) Test(context.Context) notify.Delivery { return notify.Delivery{Sent: true} }

func (f *fakeNotifier) kinds() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.kind)
	}
	return out
}

type fakeEjector struct {
	devices []string
}

func (f *fakeEjector) Eject(_ context.Context, device string) error {
	f.devices = append(f.devices, device)
	return nil
}

type fakeUpload struct {
	err   error
	calls []string
}

func (f *fakeUpload) Start(_ context.Context, finalPath string) (string, error) {
	f.calls = append(f.calls, finalPath)
	return "copyparty-upload@test.service", f.err
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func probeReturning(result disc.ProbeResult) func(string) disc.ProbeResult {
	return func(string) disc.ProbeResult { return result }
}

func discReady() disc.ProbeResult {
	return disc.Classify(disc.DriveStatusDiscOK)
}

func sessionEntries(t *testing.T, ripDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(ripDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		t.Fatalf("read rip dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		// Per-device lock files are expected residue.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

func TestRunSuccess(t *testing.T) {
	cfg := newTestConfig(t)
	client := &fakeRipClient{t: t, output: ripOutput, album: "The Wall"}
	notifier := &fakeNotifier{}
	ejector := &fakeEjector{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   client,
		Notifier: notifier,
		Ejector:  ejector,
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeSucceeded {
		t.Fatalf("outcome = %v, err = %v", result.Outcome, result.Err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", result.ExitCode)
	}
	if result.Meta.Artist != "Pink Floyd" || result.Meta.Album != "The Wall" {
		t.Fatalf("meta = %+v", result.Meta)
	}
	if result.Meta.CoverURL != "https://example.com/cover.jpg" {
		t.Fatalf("cover = %q", result.Meta.CoverURL)
	}
	if result.FinalPath != filepath.Join(cfg.Paths.MusicDir, "The Wall") {
		t.Fatalf("final path = %q", result.FinalPath)
	}
	if _, err := os.Stat(filepath.Join(result.FinalPath, "01.flac")); err != nil {
		t.Fatalf("album not relocated: %v", err)
	}

	// Cleanup law: session gone, eject exactly once.
	if leftover := sessionEntries(t, cfg.Paths.RipDir); len(leftover) != 0 {
		t.Fatalf("session directories leaked: %v", leftover)
	}
	if len(ejector.devices) != 1 || ejector.devices[0] != "sr0" {
		t.Fatalf("eject calls = %v, want exactly one for sr0", ejector.devices)
	}

	kinds := notifier.kinds()
	if len(kinds) != 2 || kinds[0] != "started" || kinds[1] != "completed" {
		t.Fatalf("notifications = %v, want [started completed]", kinds)
	}
	completed := notifier.events[1]
	if completed.meta.Artist != "Pink Floyd" || completed.meta.Album != "The Wall" {
		t.Fatalf("completed notification meta = %+v", completed.meta)
	}
}

func TestRunTrayOpenAborts(t *testing.T) {
	cfg := newTestConfig(t)
	client := &fakeRipClient{t: t}
	notifier := &fakeNotifier{}
	ejector := &fakeEjector{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(disc.Classify(disc.DriveStatusTrayOpen)),
		Client:   client,
		Notifier: notifier,
		Ejector:  ejector,
	})

	result := wf.Run(context.Background(), "sr1")
	if result.Outcome != workflow.OutcomeAborted {
		t.Fatalf("outcome = %v", result.Outcome)
	}
	if result.Reason != "Tray Open" {
		t.Fatalf("reason = %q", result.Reason)
	}
	if client.calls != 0 {
		t.Fatal("ripper must not run when tray is open")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no notification expected, got %v", notifier.kinds())
	}
	if len(ejector.devices) != 0 {
		t.Fatalf("no eject expected, got %v", ejector.devices)
	}
	if leftover := sessionEntries(t, cfg.Paths.RipDir); len(leftover) != 0 {
		t.Fatalf("no session directory expected, got %v", leftover)
	}
}

func TestRunRipperFailure(t *testing.T) {
	cfg := newTestConfig(t)
	ripErr := &services.ExitCodeError{Tool: "abcde", Code: 1, Err: errors.New("read error")}
	client := &fakeRipClient{t: t, output: "scratched disc", err: ripErr}
	notifier := &fakeNotifier{}
	ejector := &fakeEjector{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   client,
		Notifier: notifier,
		Ejector:  ejector,
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeFailed {
		t.Fatalf("outcome = %v", result.Outcome)
	}
	if result.ExitCode != 1 {
		t.Fatalf("exit code = %d, want ripper's code 1", result.ExitCode)
	}

	kinds := notifier.kinds()
	if len(kinds) != 2 || kinds[1] != "failed" {
		t.Fatalf("notifications = %v, want [started failed]", kinds)
	}
	if notifier.events[1].exitCode != 1 {
		t.Fatalf("failure notification exit code = %d", notifier.events[1].exitCode)
	}
	if leftover := sessionEntries(t, cfg.Paths.RipDir); len(leftover) != 0 {
		t.Fatalf("session directories leaked: %v", leftover)
	}
	if len(ejector.devices) != 1 {
		t.Fatalf("eject calls = %v, want exactly one", ejector.devices)
	}
}

func TestRunMissingOutputIsFatal(t *testing.T) {
	cfg := newTestConfig(t)
	client := &fakeRipClient{t: t, output: "looked fine"} // exits 0 but produces nothing
	notifier := &fakeNotifier{}
	ejector := &fakeEjector{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   client,
		Notifier: notifier,
		Ejector:  ejector,
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeFailed || result.ExitCode != 1 {
		t.Fatalf("result = %+v, want failure with exit 1", result)
	}
	if !errors.Is(result.Err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", result.Err)
	}
	if kinds := notifier.kinds(); len(kinds) != 2 || kinds[1] != "failed" {
		t.Fatalf("notifications = %v", kinds)
	}
	if len(ejector.devices) != 1 {
		t.Fatalf("eject calls = %v", ejector.devices)
	}
}

func TestRunProbeFailureFailsOpen(t *testing.T) {
	cfg := newTestConfig(t)
	client := &fakeRipClient{t: t, output: ripOutput, album: "The Wall"}
	notifier := &fakeNotifier{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe: probeReturning(disc.ProbeResult{
			Reason: "Check Failed",
			Ready:  true,
			Failed: true,
			Err:    errors.New("permission denied"),
		}),
		Client:   client,
		Notifier: notifier,
		Ejector:  &fakeEjector{},
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeSucceeded {
		t.Fatalf("fail-open probe should still rip, got %+v", result)
	}
	if client.calls != 1 {
		t.Fatalf("ripper calls = %d, want 1", client.calls)
	}
}

func TestRunUploadFailureIsNonFatal(t *testing.T) {
	cfg := newTestConfig(t)
	client := &fakeRipClient{t: t, output: ripOutput, album: "The Wall"}
	notifier := &fakeNotifier{}
	upload := &fakeUpload{err: errors.New("unit not found")}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   client,
		Notifier: notifier,
		Ejector:  &fakeEjector{},
		Upload:   upload,
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeSucceeded || result.ExitCode != 0 {
		t.Fatalf("upload failure must not change outcome, got %+v", result)
	}
	if len(upload.calls) != 1 {
		t.Fatalf("upload calls = %v", upload.calls)
	}
	kinds := notifier.kinds()
	if len(kinds) != 3 || kinds[1] != "upload_failed" || kinds[2] != "completed" {
		t.Fatalf("notifications = %v, want [started upload_failed completed]", kinds)
	}
	if notifier.events[1].album != "The Wall" {
		t.Fatalf("upload failure album = %q", notifier.events[1].album)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := newTestConfig(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	fixed := time.Unix(1700000000, 0)
	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   &fakeRipClient{t: t, output: ripOutput, album: "The Wall"},
		Notifier: &fakeNotifier{},
		Ejector:  &fakeEjector{},
		Store:    store,
		Now:      func() time.Time { return fixed },
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeSucceeded {
		t.Fatalf("result = %+v", result)
	}

	records, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0]
	if rec.Outcome != history.OutcomeSucceeded || rec.Artist != "Pink Floyd" || rec.Device != "/dev/sr0" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRunDefaultsToConfiguredDevice(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDevice("sr9"))
	ejector := &fakeEjector{}

	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   &fakeRipClient{t: t, output: ripOutput, album: "X"},
		Notifier: &fakeNotifier{},
		Ejector:  ejector,
	})

	if result := wf.Run(context.Background(), ""); result.Outcome != workflow.OutcomeSucceeded {
		t.Fatalf("result = %+v", result)
	}
	if len(ejector.devices) != 1 || ejector.devices[0] != "sr9" {
		t.Fatalf("eject devices = %v", ejector.devices)
	}
}

func TestRunWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	client, err := abcde.New(cfg.Ripper.Binary, cfg.Ripper.RipTimeout)
	if err != nil {
		t.Fatalf("abcde.New: %v", err)
	}
	notifier := &fakeNotifier{}

	// Real client and ejector against stub executables. The stub abcde exits 0
	// without producing output, so the missing flac directory is the failure.
	wf := workflow.NewWithDependencies(cfg, logging.NewNop(), workflow.Dependencies{
		Probe:    probeReturning(discReady()),
		Client:   client,
		Notifier: notifier,
		Ejector:  disc.NewEjector(logging.NewNop()),
	})

	result := wf.Run(context.Background(), "sr0")
	if result.Outcome != workflow.OutcomeFailed || result.ExitCode != 1 {
		t.Fatalf("result = %+v, want failure with exit 1", result)
	}
	if !errors.Is(result.Err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", result.Err)
	}
	if leftover := sessionEntries(t, cfg.Paths.RipDir); len(leftover) != 0 {
		t.Fatalf("session directories leaked: %v", leftover)
	}
}
