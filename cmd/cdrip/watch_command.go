package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cdrip/internal/monitor"
	"cdrip/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch for disc insertions and rip automatically",
		Long: `Watch listens on the udev netlink socket for media appearing in the
configured drive and runs the rip pipeline for each insertion. This
replaces a udev rule that execs the one-shot rip command.`,
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

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mon := monitor.New(cfg.Ripper.Device, logger, func(handlerCtx context.Context, device string) {
				wf.Run(handlerCtx, device)
			})
			if mon == nil {
				return fmt.Errorf("no optical device configured")
			}
			if err := mon.Start(runCtx); err != nil {
				return err
			}
			defer mon.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching /dev/%s for discs (Ctrl-C to stop)\n", cfg.Ripper.Device)
			<-runCtx.Done()
			return nil
		},
	}
}
