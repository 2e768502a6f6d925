// Package app assembles stores, transports and services for the API server
// and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/go-notification-hub/internal/application/archive"
	"github.com/go-notification-hub/internal/application/delivery"
	"github.com/go-notification-hub/internal/application/dispatch"
	"github.com/go-notification-hub/internal/application/notification"
	"github.com/go-notification-hub/internal/application/stats"
	"github.com/go-notification-hub/internal/application/template"
	"github.com/go-notification-hub/internal/channel"
	"github.com/go-notification-hub/internal/config"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/infrastructure/httpclient"
	s3infra "github.com/go-notification-hub/internal/infrastructure/s3"
	"github.com/go-notification-hub/internal/infrastructure/slack"
	"github.com/go-notification-hub/internal/infrastructure/smtp"
	"github.com/go-notification-hub/internal/infrastructure/sns"
	"github.com/go-notification-hub/internal/infrastructure/webhook"
	"github.com/go-notification-hub/internal/logging"
	"github.com/go-notification-hub/internal/metrics"
	"github.com/go-notification-hub/internal/store"
)

// App holds the wired services.
type App struct {
	Config        *config.Config
	Stores        *store.Stores
	Senders       *channel.Registry
	Metrics       *metrics.Recorder
	Templates     template.Service
	Log           delivery.Log
	Engine        *dispatch.Engine
	Retry         *dispatch.RetryCoordinator
	Stats         stats.Service
	Notifications notification.Service
	// Archive is nil when no object store could be configured.
	Archive archive.Service
}

// New opens the configured store and builds every transport.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	stores, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry := Senders(ctx, cfg)

	var uploader archive.Uploader
	if cfg.ArchiveBucket != "" {
		client, err := s3infra.NewClient(ctx, cfg)
		if err != nil {
			logging.Get().Warn().Err(err).Msg("S3 archive not available")
		} else {
			uploader = s3infra.NewStore(client, cfg.ArchiveBucket)
		}
	}
	return Assemble(cfg, stores, registry, uploader), nil
}

// Assemble wires services over already-built stores and senders.
func Assemble(cfg *config.Config, stores *store.Stores, registry *channel.Registry, uploader archive.Uploader) *App {
	rec := metrics.New()
	log := delivery.NewLog(stores.Deliveries)
	locks := dispatch.NewKeyLock()
	engine := dispatch.NewEngine(dispatch.EngineDeps{
		Notifications: stores.Notifications,
		Templates:     stores.Templates,
		Log:           log,
		Senders:       registry,
		Locks:         locks,
		Metrics:       rec,
		Timeout:       cfg.DispatchTimeout,
		Workers:       cfg.DispatchWorkers,
		Strict:        cfg.StrictTemplates,
	})

	a := &App{
		Config:    cfg,
		Stores:    stores,
		Senders:   registry,
		Metrics:   rec,
		Templates: template.NewService(stores.Templates),
		Log:       log,
		Engine:    engine,
		Retry:     dispatch.NewRetryCoordinator(engine),
		Stats:     stats.NewService(stores.Notifications, stores.Deliveries),
		Notifications: notification.NewService(notification.ServiceDeps{
			Repo:  stores.Notifications,
			Log:   log,
			Locks: locks,
		}),
	}
	if uploader != nil {
		a.Archive = archive.NewService(log, uploader, "")
	}
	return a
}

// Senders builds the channel registry. Channels whose transport is not
// configured are left out and resolve to domain.ErrUnsupportedChannel.
func Senders(ctx context.Context, cfg *config.Config) *channel.Registry {
	logger := logging.Get()
	hc := httpclient.New(cfg.HTTPTimeout)
	r := channel.NewRegistry()

	if cfg.SMTPHost != "" {
		r.Register(domain.ChannelEmail, channel.Email{Mailer: smtp.NewMailer(cfg)})
	}

	slackClient := slack.NewClient(cfg.SlackWebhookURL, hc)
	if slackClient.Configured() {
		r.Register(domain.ChannelSlack, channel.Slack{Client: slackClient})
	} else {
		logger.Debug().Msg("SLACK_WEBHOOK_URL not set, slack channel disabled")
	}

	r.Register(domain.ChannelWebhook, channel.Webhook{Client: webhook.NewClient(cfg.WebhookSigningSecret, hc)})

	if publisher, err := sns.NewPublisher(ctx, cfg); err == nil {
		r.Register(domain.ChannelPush, channel.Push{Publisher: publisher})
	} else {
		logger.Warn().Err(err).Msg("SNS publisher not available, push channel disabled")
	}
	return r
}

// Close releases the store.
func (a *App) Close() error {
	if a.Stores == nil || a.Stores.Close == nil {
		return nil
	}
	if err := a.Stores.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
