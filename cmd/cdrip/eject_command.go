package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cdrip/internal/disc"
)

func newEjectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "eject [device]",
		Short: "Eject the disc tray",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			device := cfg.Ripper.Device
			if len(args) == 1 {
				device = strings.TrimPrefix(args[0], "/dev/")
			}
			if err := disc.NewEjector(nil).Eject(cmd.Context(), device); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ejected /dev/%s\n", device)
			return nil
		},
	}
}
