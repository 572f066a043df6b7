package disc

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"cdrip/internal/logging"
)

// Ejector opens the tray after a rip attempt so the next disc can be loaded.
// It accepts the device short name (for example "sr0") and resolves the /dev
// node itself.
type Ejector interface {
	Eject(ctx context.Context, device string) error
}

type commandEjector struct {
	logger *slog.Logger
}

// NewEjector creates an ejector that shells out to the eject utility.
func NewEjector(logger *slog.Logger) Ejector {
	return commandEjector{logger: logging.NewComponentLogger(logger, "ejector")}
}

func (e commandEjector) Eject(ctx context.Context, device string) error {
	path := DevicePath(device)

	args := make([]string, 0, 1)
	if path != "" {
		args = append(args, path)
	}
	e.logger.Debug("opening tray", logging.String("device", path))

	if err := exec.CommandContext(ctx, "eject", args...).Run(); err != nil {
		return fmt.Errorf("eject %s: %w", path, err)
	}
	return nil
}
