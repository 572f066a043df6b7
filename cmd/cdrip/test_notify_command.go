package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdrip/internal/notify"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.TelegramConfigured() {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications are not configured; set telegram token and chat_id")
				return nil
			}

			delivery := notify.NewService(cfg).Test(cmd.Context())
			if delivery.Err != nil && !delivery.Sent {
				return fmt.Errorf("send test notification: %w", delivery.Err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
