package store

import (
	"context"
	"fmt"

	"github.com/go-notification-hub/internal/config"
	"github.com/go-notification-hub/internal/infrastructure/dynamo"
	"github.com/go-notification-hub/internal/infrastructure/memory"
	"github.com/go-notification-hub/internal/infrastructure/sqlite"
	"github.com/go-notification-hub/internal/logging"
)

var (
	_ NotificationStore = (*memory.NotificationRepo)(nil)
	_ TemplateStore     = (*memory.TemplateRepo)(nil)
	_ DeliveryStore     = (*memory.DeliveryRepo)(nil)

	_ NotificationStore = (*sqlite.NotificationRepo)(nil)
	_ TemplateStore     = (*sqlite.TemplateRepo)(nil)
	_ DeliveryStore     = (*sqlite.DeliveryRepo)(nil)

	_ NotificationStore = (*dynamo.NotificationRepo)(nil)
	_ TemplateStore     = (*dynamo.TemplateRepo)(nil)
	_ DeliveryStore     = (*dynamo.DeliveryRepo)(nil)
)

// Open builds the backend named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		return Memory(), nil
	case "sqlite", "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w: %w", cfg.SQLitePath, ErrOpen, err)
		}
		logging.Get().Debug().Str("path", cfg.SQLitePath).Msg("sqlite store opened")
		return &Stores{
			Notifications: db.Notifications(),
			Templates:     db.Templates(),
			Deliveries:    db.Deliveries(),
			Close:         db.Close,
		}, nil
	case "dynamo", "dynamodb":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamo client: %w: %w", ErrOpen, err)
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &Stores{
			Notifications: dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications),
			Templates:     dynamo.NewTemplateRepo(client, cfg.DynamoTables.Templates),
			Deliveries:    dynamo.NewDeliveryRepo(client, cfg.DynamoTables.DeliveryLog),
			Close:         func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q: %w", cfg.StoreDriver, ErrOpen)
	}
}

// Memory returns a fresh in-process backend.
func Memory() *Stores {
	return &Stores{
		Notifications: memory.NewNotificationRepo(),
		Templates:     memory.NewTemplateRepo(),
		Deliveries:    memory.NewDeliveryRepo(),
		Close:         func() error { return nil },
	}
}
