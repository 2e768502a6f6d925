package cmd

import (
	"github.com/spf13/cobra"
)

func newUnreadCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "unread RECIPIENT",
		Short: "List sent, unread notifications for a recipient, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := rt.app.Notifications.ListUnread(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, ns)
		},
	}
}

func newReadCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "read ID",
		Short: "Mark a sent notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rt.app.Notifications.MarkRead(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, n)
		},
	}
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rt.app.Notifications.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, n)
		},
	}
}

func newLogCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "log [ID]",
		Short: "Show delivery attempts for one notification, or the whole log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				entries, err := rt.app.Notifications.Deliveries(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, entries)
			}
			entries, err := rt.app.Log.All(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, entries)
		},
	}
}
