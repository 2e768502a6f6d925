package cmd

import (
	"errors"

	"github.com/go-notification-hub/internal/domain"
	"github.com/spf13/cobra"
)

func newStatsCmd(rt *runtime) *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate delivery statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *domain.Channel
			if channel != "" {
				c, err := domain.ParseChannel(channel)
				if err != nil {
					return err
				}
				filter = &c
			}
			s, err := rt.app.Stats.Stats(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "restrict to one channel")
	return cmd
}

func newRetryCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Run one retry pass over failed notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := rt.app.Retry.RetryFailed(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, results)
		},
	}
}

func newArchiveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Export the delivery log to the S3 archive bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.app.Archive == nil {
				return errors.New("delivery archive is not configured, set S3_ARCHIVE_BUCKET")
			}
			res, err := rt.app.Archive.Export(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}
