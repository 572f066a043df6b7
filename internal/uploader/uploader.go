package uploader

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"log/slog"

	"cdrip/internal/logging"
	"cdrip/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the trigger.
type Option func(*Trigger)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(t *Trigger) {
		if exec != nil {
			t.exec = exec
		}
	}
}

// Trigger starts a per-path systemd upload unit for completed albums.
type Trigger struct {
	unitTemplate string
	logger       *slog.Logger
	exec         Executor
}

// New constructs an upload trigger. unitTemplate must contain a %s
// placeholder for the escaped album path.
func New(unitTemplate string, logger *slog.Logger, opts ...Option) *Trigger {
	t := &Trigger{
		unitTemplate: unitTemplate,
		logger:       logging.NewComponentLogger(logger, "uploader"),
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start escapes finalPath into a unit-safe identifier and asks systemd to
// start the corresponding upload unit. Returns the unit name that was
// started.
func (t *Trigger) Start(ctx context.Context, finalPath string) (string, error) {
	escaped, err := t.exec.Output(ctx, "systemd-escape", []string{"--path", finalPath})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "uploading", "escape path", "systemd-escape failed", err)
	}

	unit := fmt.Sprintf(t.unitTemplate, strings.TrimSpace(string(escaped)))
	t.logger.Info("starting upload service", logging.String("unit", unit))

	if err := t.exec.Run(ctx, "systemctl", []string{"start", unit}); err != nil {
		return unit, services.Wrap(services.ErrExternalTool, "uploading", "start unit", fmt.Sprintf("systemctl start %s failed", unit), err)
	}
	return unit, nil
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output() //nolint:gosec
}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	return exec.CommandContext(ctx, binary, args...).Run() //nolint:gosec
}
