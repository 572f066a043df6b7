package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/history"
	"cdrip/internal/logging"
	"cdrip/internal/notify"
	"cdrip/internal/organizer"
	"cdrip/internal/services"
	"cdrip/internal/services/abcde"
	"cdrip/internal/uploader"
)

// Outcome classifies how a workflow run ended.
type Outcome int

const (
	// OutcomeAborted is a clean, expected stop: no disc, or another rip is
	// already handling the device. Maps to exit code 0.
	OutcomeAborted Outcome = iota
	// OutcomeSucceeded is a completed rip with the album relocated.
	OutcomeSucceeded
	// OutcomeFailed is a ripper or relocation failure; ExitCode carries the
	// process exit status to propagate.
	OutcomeFailed
)

// Result summarizes one workflow run.
type Result struct {
	Outcome   Outcome
	ExitCode  int
	Reason    string
	Meta      abcde.Metadata
	FinalPath string
	Err       error
}

// RipClient abstracts the external ripper invocation.
type RipClient interface {
	Rip(ctx context.Context, devicePath, outputDir string) (string, error)
}

// UploadTrigger abstracts the post-rip upload start.
type UploadTrigger interface {
	Start(ctx context.Context, finalPath string) (string, error)
}

// Dependencies allows injecting all collaborators (used in tests).
type Dependencies struct {
	Probe    func(devicePath string) disc.ProbeResult
	Client   RipClient
	Notifier notify.Service
	Ejector  disc.Ejector
	Upload   UploadTrigger
	Store    *history.Store
	Now      func() time.Time
}

// Workflow runs the rip-to-upload pipeline for a single disc insertion.
type Workflow struct {
	cfg      *config.Config
	logger   *slog.Logger
	probe    func(devicePath string) disc.ProbeResult
	client   RipClient
	org      *organizer.Organizer
	notifier notify.Service
	ejector  disc.Ejector
	upload   UploadTrigger
	store    *history.Store
	now      func() time.Time
}

// New constructs the workflow using default dependencies. The history store
// is best-effort: a failure to open it is logged and recording is skipped.
func New(cfg *config.Config, logger *slog.Logger) (*Workflow, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	client, err := abcde.New(cfg.Ripper.Binary, cfg.Ripper.RipTimeout)
	if err != nil {
		return nil, fmt.Errorf("abcde client: %w", err)
	}

	deps := Dependencies{
		Probe:    disc.Probe,
		Client:   client,
		Notifier: notify.NewService(cfg),
		Ejector:  disc.NewEjector(logger),
	}
	if cfg.UploadConfigured() {
		deps.Upload = uploader.New(cfg.Upload.UnitTemplate, logger)
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			if logger != nil {
				logger.Warn("history store unavailable, sessions will not be recorded", logging.Error(err))
			}
		} else {
			deps.Store = store
		}
	}
	return NewWithDependencies(cfg, logger, deps), nil
}

// NewWithDependencies builds a workflow from explicit collaborators.
func NewWithDependencies(cfg *config.Config, logger *slog.Logger, deps Dependencies) *Workflow {
	if deps.Probe == nil {
		deps.Probe = disc.Probe
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewService(cfg)
	}
	if deps.Ejector == nil {
		deps.Ejector = disc.NewEjector(logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	org := organizer.New(cfg.Paths.MusicDir, logger).WithClock(deps.Now)
	return &Workflow{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		probe:    deps.Probe,
		client:   deps.Client,
		org:      org,
		notifier: deps.Notifier,
		ejector:  deps.Ejector,
		upload:   deps.Upload,
		store:    deps.Store,
		now:      deps.Now,
	}
}

// Close releases resources held by default dependencies.
func (w *Workflow) Close() error {
	if w.store != nil {
		return w.store.Close()
	}
	return nil
}

// Run executes the full pipeline for the given device short name:
// probe gate, rip, relocate, upload trigger, notify, cleanup, eject.
// The session directory is removed on every exit path once created, and the
// tray is ejected whenever a rip was attempted.
func (w *Workflow) Run(ctx context.Context, device string) Result {
	device = strings.TrimPrefix(strings.TrimSpace(device), "/dev/")
	if device == "" {
		device = w.cfg.Ripper.Device
	}
	devicePath := disc.DevicePath(device)
	startedAt := w.now()

	logger := w.logger.With(
		logging.String("run_id", uuid.NewString()),
		logging.String("device", devicePath),
	)
	logger.Info("triggered", logging.String("event", "rip_triggered"))

	if err := os.MkdirAll(w.cfg.Paths.RipDir, 0o755); err != nil {
		logger.Error("failed to create rip directory", logging.Error(err))
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Err: err}
	}
	lock := flock.New(filepath.Join(w.cfg.Paths.RipDir, "."+device+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		// Lock trouble is not a confirmed concurrent rip; continue fail-open
		// like the drive probe.
		logger.Warn("device lock unavailable, continuing", logging.Error(err))
	} else if !locked {
		logger.Info("another rip is already handling this device, aborting")
		return Result{Outcome: OutcomeAborted, Reason: "Device Busy"}
	} else {
		defer lock.Unlock() //nolint:errcheck
	}

	probe := w.probe(devicePath)
	if probe.Failed {
		logger.Error("failed to query drive status, assuming disc present", logging.Error(probe.Err))
	}
	if !probe.Ready {
		logger.Info("aborting", logging.String("status", probe.Reason))
		return Result{Outcome: OutcomeAborted, Reason: probe.Reason}
	}

	session, err := NewSession(w.cfg.Paths.RipDir, device, w.now)
	if err != nil {
		logger.Error("failed to create session directory", logging.Error(err))
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Err: err}
	}
	defer func() {
		if cleanupErr := session.Cleanup(); cleanupErr != nil {
			logger.Warn("failed to clean session directory", logging.Error(cleanupErr))
		} else {
			logger.Info("cleaned session directory", logging.String("session_dir", session.Dir))
		}
		logger.Info("ejecting", logging.String("device", devicePath))
		if ejectErr := w.ejector.Eject(ctx, device); ejectErr != nil {
			logger.Debug("eject failed", logging.Error(ejectErr))
		}
	}()

	logger.Info("disc confirmed, starting rip",
		logging.String("status", probe.Reason),
		logging.String("session_dir", session.Dir),
	)
	w.logDelivery(logger, w.notifier.NotifyRipStarted(ctx, devicePath))

	result := w.rip(ctx, logger, devicePath, session)
	result.Reason = probe.Reason
	w.record(ctx, logger, devicePath, startedAt, result)
	return result
}

func (w *Workflow) rip(ctx context.Context, logger *slog.Logger, devicePath string, session *Session) Result {
	output, err := w.client.Rip(ctx, devicePath, session.Dir)
	if err != nil {
		code := services.ExitCode(err)
		logger.Error("rip failed",
			logging.Int("exit_code", code),
			logging.Error(err),
			logging.String("output", strings.TrimSpace(output)),
		)
		w.logDelivery(logger, w.notifier.NotifyRipFailed(ctx, devicePath, code))
		return Result{Outcome: OutcomeFailed, ExitCode: code, Err: err}
	}
	logger.Info("ripper finished", logging.String("output", strings.TrimSpace(output)))
	meta := abcde.ParseLog(output)

	albumDir, err := organizer.FindAlbumDir(session.Dir)
	if err != nil {
		logger.Error("rip output missing", logging.Error(err))
		w.logDelivery(logger, w.notifier.NotifyRipFailed(ctx, devicePath, 1))
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Meta: meta, Err: err}
	}

	finalPath, err := w.org.Relocate(albumDir)
	if err != nil {
		logger.Error("failed to relocate album", logging.Error(err))
		w.logDelivery(logger, w.notifier.NotifyRipFailed(ctx, devicePath, 1))
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Meta: meta, Err: err}
	}

	if w.upload != nil {
		if unit, err := w.upload.Start(ctx, finalPath); err != nil {
			logger.Error("failed to start upload service",
				logging.String("unit", unit),
				logging.Error(err),
			)
			w.logDelivery(logger, w.notifier.NotifyUploadFailed(ctx, devicePath, filepath.Base(finalPath)))
		}
	}

	w.logDelivery(logger, w.notifier.NotifyRipCompleted(ctx, meta, devicePath))
	logger.Info("rip completed successfully",
		logging.String("artist", meta.Artist),
		logging.String("album", meta.Album),
		logging.String("final_path", finalPath),
	)
	return Result{Outcome: OutcomeSucceeded, Meta: meta, FinalPath: finalPath}
}

func (w *Workflow) logDelivery(logger *slog.Logger, delivery notify.Delivery) {
	switch {
	case delivery.Err != nil && !delivery.Sent:
		logger.Error("failed to send notification", logging.Error(delivery.Err))
	case delivery.Downgraded:
		logger.Warn("notification downgraded to text", logging.Error(delivery.Err))
	}
}

func (w *Workflow) record(ctx context.Context, logger *slog.Logger, devicePath string, startedAt time.Time, result Result) {
	if w.store == nil {
		return
	}
	rec := history.Record{
		Device:     devicePath,
		Artist:     result.Meta.Artist,
		Album:      result.Meta.Album,
		FinalPath:  result.FinalPath,
		ExitCode:   result.ExitCode,
		StartedAt:  startedAt,
		FinishedAt: w.now(),
	}
	switch result.Outcome {
	case OutcomeSucceeded:
		rec.Outcome = history.OutcomeSucceeded
	case OutcomeFailed:
		rec.Outcome = history.OutcomeFailed
	default:
		rec.Outcome = history.OutcomeAborted
	}
	if err := w.store.Add(ctx, &rec); err != nil {
		logger.Warn("failed to record rip session", logging.Error(err))
	}
}
