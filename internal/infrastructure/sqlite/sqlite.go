// Package sqlite is the single-file store backend built on the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-notification-hub/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store implements the notification, template and delivery stores over one database.
type Store struct {
	db *sql.DB
}

// Open creates the parent directory, opens the database and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer; it also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Notifications, Templates and Deliveries expose the store under each contract.
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{db: s.db} }
func (s *Store) Templates() *TemplateRepo         { return &TemplateRepo{db: s.db} }
func (s *Store) Deliveries() *DeliveryRepo        { return &DeliveryRepo{db: s.db} }

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func nanos(t time.Time) int64 { return t.UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// NotificationRepo stores notifications in the notifications table.
type NotificationRepo struct {
	db *sql.DB
}

const notificationColumns = `id, type, recipient, subject, body, channel, status, read, read_at, sent_at,
	template, metadata, retry_count, created_at, updated_at`

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	tmpl, meta, err := encodeExtras(n)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications(`+notificationColumns+`)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO NOTHING`,
		n.NotificationID, n.Type, n.Recipient, n.Subject, n.Body, string(n.Channel), string(n.Status),
		n.Read, nullTime(n.ReadAt), nullTime(n.SentAt), tmpl, meta, n.RetryCount,
		nanos(n.CreatedAt), nanos(n.UpdatedAt),
	)
	if err != nil {
		return unavailable("insert notification", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrConflict)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, notificationID)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotificationNotFound)
	}
	if err != nil {
		return nil, unavailable("get notification", err)
	}
	return n, nil
}

func (r *NotificationRepo) Update(ctx context.Context, n *domain.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications
		 SET subject = ?, body = ?, status = ?, read = ?, read_at = ?, sent_at = ?, retry_count = ?, updated_at = ?
		 WHERE id = ?`,
		n.Subject, n.Body, string(n.Status), n.Read, nullTime(n.ReadAt), nullTime(n.SentAt),
		n.RetryCount, nanos(n.UpdatedAt), n.NotificationID,
	)
	if err != nil {
		return unavailable("update notification", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrNotificationNotFound)
	}
	return nil
}

func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipient string) ([]domain.Notification, error) {
	return r.list(ctx, `WHERE recipient = ?`, recipient)
}

func (r *NotificationRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Notification, error) {
	return r.list(ctx, `WHERE status = ?`, string(status))
}

func (r *NotificationRepo) Scan(ctx context.Context) ([]domain.Notification, error) {
	return r.list(ctx, ``)
}

func (r *NotificationRepo) list(ctx context.Context, where string, args ...any) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications `+where+` ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, unavailable("list notifications", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, unavailable("scan notification", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list notifications", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n                domain.Notification
		channel, status  string
		readAt, sentAt   sql.NullInt64
		tmpl             sql.NullString
		meta             string
		created, updated int64
	)
	if err := row.Scan(&n.NotificationID, &n.Type, &n.Recipient, &n.Subject, &n.Body, &channel, &status,
		&n.Read, &readAt, &sentAt, &tmpl, &meta, &n.RetryCount, &created, &updated); err != nil {
		return nil, err
	}
	n.Channel = domain.Channel(channel)
	n.Status = domain.Status(status)
	n.ReadAt = timePtr(readAt)
	n.SentAt = timePtr(sentAt)
	n.CreatedAt = fromNanos(created)
	n.UpdatedAt = fromNanos(updated)
	if tmpl.Valid && tmpl.String != "" {
		var ref domain.TemplateRef
		dec := json.NewDecoder(strings.NewReader(tmpl.String))
		dec.UseNumber()
		if err := dec.Decode(&ref); err != nil {
			return nil, fmt.Errorf("decode template ref: %w", err)
		}
		n.Template = &ref
	}
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &n, nil
}

func encodeExtras(n *domain.Notification) (tmpl any, meta string, err error) {
	if n.Template != nil {
		b, err := json.Marshal(n.Template)
		if err != nil {
			return nil, "", fmt.Errorf("encode template ref: %w", err)
		}
		tmpl = string(b)
	}
	meta = "{}"
	if len(n.Metadata) > 0 {
		b, err := json.Marshal(n.Metadata)
		if err != nil {
			return nil, "", fmt.Errorf("encode metadata: %w", err)
		}
		meta = string(b)
	}
	return tmpl, meta, nil
}

// TemplateRepo stores templates in the templates table.
type TemplateRepo struct {
	db *sql.DB
}

func (r *TemplateRepo) Put(ctx context.Context, t *domain.Template) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO templates(name, channel, subject, body, created_at, updated_at) VALUES(?,?,?,?,?,?)
		 ON CONFLICT(name) DO UPDATE SET channel=excluded.channel, subject=excluded.subject,
		 body=excluded.body, updated_at=excluded.updated_at`,
		t.Name, string(t.Channel), t.Subject, t.Body, nanos(t.CreatedAt), nanos(t.UpdatedAt),
	)
	if err != nil {
		return unavailable("put template", err)
	}
	return nil
}

func (r *TemplateRepo) Get(ctx context.Context, name string) (*domain.Template, error) {
	var (
		t                domain.Template
		channel          string
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, channel, subject, body, created_at, updated_at FROM templates WHERE name = ?`, name,
	).Scan(&t.Name, &channel, &t.Subject, &t.Body, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %q: %w", name, domain.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, unavailable("get template", err)
	}
	t.Channel = domain.Channel(channel)
	t.CreatedAt = fromNanos(created)
	t.UpdatedAt = fromNanos(updated)
	return &t, nil
}

func (r *TemplateRepo) Scan(ctx context.Context) ([]domain.Template, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, channel, subject, body, created_at, updated_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, unavailable("list templates", err)
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		var (
			t                domain.Template
			channel          string
			created, updated int64
		)
		if err := rows.Scan(&t.Name, &channel, &t.Subject, &t.Body, &created, &updated); err != nil {
			return nil, unavailable("scan template", err)
		}
		t.Channel = domain.Channel(channel)
		t.CreatedAt = fromNanos(created)
		t.UpdatedAt = fromNanos(updated)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list templates", err)
	}
	return out, nil
}

// DeliveryRepo is the append-only delivery_log table.
type DeliveryRepo struct {
	db *sql.DB
}

func (r *DeliveryRepo) Append(ctx context.Context, e domain.DeliveryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_log(entry_id, notification_id, channel, attempted_at, latency_ns, outcome, error)
		 VALUES(?,?,?,?,?,?,?)`,
		e.EntryID, e.NotificationID, string(e.Channel), nanos(e.AttemptedAt), int64(e.Latency),
		string(e.Outcome), nullStr(e.Error),
	)
	if err != nil {
		return unavailable("append delivery entry", err)
	}
	return nil
}

func (r *DeliveryRepo) ListByNotification(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	return r.list(ctx, `WHERE notification_id = ?`, notificationID)
}

func (r *DeliveryRepo) Scan(ctx context.Context) ([]domain.DeliveryEntry, error) {
	return r.list(ctx, ``)
}

func (r *DeliveryRepo) list(ctx context.Context, where string, args ...any) ([]domain.DeliveryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_id, notification_id, channel, attempted_at, latency_ns, outcome, error
		 FROM delivery_log `+where+` ORDER BY seq ASC`, args...)
	if err != nil {
		return nil, unavailable("list delivery log", err)
	}
	defer rows.Close()

	var out []domain.DeliveryEntry
	for rows.Next() {
		var (
			e                domain.DeliveryEntry
			channel, outcome string
			attempted, lat   int64
			errText          sql.NullString
		)
		if err := rows.Scan(&e.EntryID, &e.NotificationID, &channel, &attempted, &lat, &outcome, &errText); err != nil {
			return nil, unavailable("scan delivery entry", err)
		}
		e.Channel = domain.Channel(channel)
		e.AttemptedAt = fromNanos(attempted)
		e.Latency = time.Duration(lat)
		e.Outcome = domain.Outcome(outcome)
		e.Error = errText.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list delivery log", err)
	}
	return out, nil
}
