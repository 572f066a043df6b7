package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cdrip/internal/services"
	"cdrip/internal/workflow"
)

func newRipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rip <device>",
		Short: "Rip the disc in the given drive (udev/systemd entry point)",
		Long: `Rip runs the full pipeline once for the given device short name
(for example "sr0"): verify a disc is present, rip it to FLAC, move the
album into the music library, trigger the upload service, and notify.

Exits 0 when the rip succeeds or when there is nothing to do (no disc,
open tray, or another rip already handling the device). A ripper failure
propagates the ripper's exit code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			wf, err := workflow.New(cfg, logger)
			if err != nil {
				return err
			}
			defer wf.Close()

			result := wf.Run(cmd.Context(), args[0])
			switch result.Outcome {
			case workflow.OutcomeSucceeded:
				fmt.Fprintf(cmd.OutOrStdout(), "Ripped %s / %s to %s\n",
					result.Meta.Artist, result.Meta.Album, result.FinalPath)
				return nil
			case workflow.OutcomeAborted:
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to do: %s\n", result.Reason)
				return nil
			default:
				err := result.Err
				if err == nil {
					err = errors.New("rip failed")
				}
				var coded *services.ExitCodeError
				if errors.As(err, &coded) {
					return err
				}
				return &services.ExitCodeError{Tool: "cdrip", Code: result.ExitCode, Err: err}
			}
		},
	}
}
