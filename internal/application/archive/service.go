// Package archive exports the delivery log to object storage as JSON lines.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/pkg/id"
)

const contentType = "application/x-ndjson"

type Service interface {
	Export(ctx context.Context) (*Result, error)
}

type Result struct {
	URI     string `json:"uri"`
	Entries int    `json:"entries"`
}

type deliveryLog interface {
	All(ctx context.Context) ([]domain.DeliveryEntry, error)
}

// Uploader stores one object and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	log    deliveryLog
	store  Uploader
	prefix string
	now    func() time.Time
}

func NewService(log deliveryLog, store Uploader, prefix string) Service {
	if prefix == "" {
		prefix = "delivery-log"
	}
	return &service{log: log, store: store, prefix: prefix, now: func() time.Time { return time.Now().UTC() }}
}

// Export writes every log entry as one JSON object per line under
// <prefix>/YYYY/MM/DD/<id>.jsonl.
func (s *service) Export(ctx context.Context) (*Result, error) {
	entries, err := s.log.All(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", e.EntryID, err)
		}
	}

	now := s.now()
	objectID, err := id.NewAt(now)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s/%s.jsonl", s.prefix, now.Format("2006/01/02"), objectID)
	uri, err := s.store.Upload(ctx, key, &buf, contentType)
	if err != nil {
		return nil, err
	}
	return &Result{URI: uri, Entries: len(entries)}, nil
}
