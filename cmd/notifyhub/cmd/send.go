package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-notification-hub/internal/application/dispatch"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/pkg/id"
	"github.com/go-notification-hub/internal/pkg/validate"
	"github.com/spf13/cobra"
)

func newSendCmd(rt *runtime) *cobra.Command {
	var (
		req      domain.CreateNotificationRequest
		notifID  string
		template string
		rawVars  string
		pairs    []string
		metadata map[string]string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Create a notification and dispatch it once",
		Example: `  notifyhub send --recipient alice@example.com --channel email --subject Hi --body Hello
  notifyhub send --recipient alice@example.com --channel email --template welcome --var name=Alice
  notifyhub send --id 01J... # resend an existing failed notification`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := rt.app.Engine
			if notifID != "" && req.Recipient == "" {
				// Resend of a stored notification; content comes from the store.
				res, err := engine.Send(cmd.Context(), &domain.Notification{NotificationID: notifID})
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			}
			if template != "" {
				vars, err := parseVars(rawVars, pairs)
				if err != nil {
					return err
				}
				req.Template = &domain.TemplateRef{Name: template, Variables: vars}
			}
			req.Metadata = metadata
			n, err := buildNotification(notifID, req)
			if err != nil {
				return err
			}
			res, err := engine.Send(cmd.Context(), n)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&notifID, "id", "", "notification id (generated when omitted)")
	f.StringVar(&req.Recipient, "recipient", "", "recipient address, channel, URL or phone number")
	f.StringVar(&req.Channel, "channel", "", "email, slack, webhook or push")
	f.StringVar(&req.Type, "type", "", "notification type (default \"general\")")
	f.StringVar(&req.Subject, "subject", "", "subject line")
	f.StringVar(&req.Body, "body", "", "message body")
	f.StringVar(&template, "template", "", "template name to render subject and body from")
	f.StringVar(&rawVars, "vars", "", "template variables as a JSON object")
	f.StringArrayVar(&pairs, "var", nil, "template variable as key=value, dotted keys nest (repeatable)")
	f.StringToStringVar(&metadata, "meta", nil, "metadata key=value pairs")
	return cmd
}

func newBatchSendCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "batch-send FILE",
		Short: "Dispatch every notification in a JSON file (\"-\" reads stdin)",
		Long: `batch-send reads a JSON array of notification requests, or an object with a
"notifications" array, and dispatches them concurrently. Results keep input order; an invalid item is
reported in its own result and does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			reqs, err := decodeBatch(data)
			if err != nil {
				return err
			}
			items := make([]dispatch.BatchItem, len(reqs))
			for i, r := range reqs {
				n, err := buildNotification("", r)
				items[i] = dispatch.BatchItem{Notification: n, Err: err}
			}
			results := dispatch.SendItems(cmd.Context(), rt.app.Engine, items)
			return printJSON(cmd, results)
		},
	}
}

func decodeBatch(data []byte) ([]domain.CreateNotificationRequest, error) {
	trimmed := strings.TrimSpace(string(data))
	var reqs []domain.CreateNotificationRequest
	if strings.HasPrefix(trimmed, "[") {
		if err := decodeJSON(data, &reqs); err != nil {
			return nil, fmt.Errorf("parse batch: %w", err)
		}
		return reqs, nil
	}
	var wrapped struct {
		Notifications []domain.CreateNotificationRequest `json:"notifications"`
	}
	if err := decodeJSON(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	return wrapped.Notifications, nil
}

func buildNotification(notifID string, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if notifID == "" {
		notifID = id.New()
	}
	return domain.NewNotification(notifID, req, time.Now().UTC()), nil
}
