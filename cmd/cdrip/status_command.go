package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cdrip/internal/disc"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [device]",
		Short: "Show drive and disc status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var devices []string
			if len(args) == 1 {
				devices = []string{strings.TrimPrefix(args[0], "/dev/")}
			} else {
				devices = discoverDrives(cfg.Ripper.Device)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, device := range devices {
				result := disc.Probe(disc.DevicePath(device))
				fmt.Fprintln(out, renderDriveLine(device, result, colorize))
			}
			return nil
		},
	}
}

// discoverDrives lists sr* block devices, falling back to the configured
// device when none are visible.
func discoverDrives(configured string) []string {
	matches, err := filepath.Glob("/dev/sr*")
	if err != nil || len(matches) == 0 {
		return []string{configured}
	}
	devices := make([]string, 0, len(matches))
	for _, match := range matches {
		devices = append(devices, strings.TrimPrefix(match, "/dev/"))
	}
	return devices
}

func renderDriveLine(device string, result disc.ProbeResult, colorize bool) string {
	line := fmt.Sprintf("  %-8s %s", "/dev/"+device+":", result.Reason)
	if !colorize {
		return line
	}
	switch {
	case result.Failed:
		return ansiYellow + line + ansiReset
	case result.Ready:
		return ansiGreen + line + ansiReset
	default:
		return ansiRed + line + ansiReset
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
