package id

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewAt generates a ULID whose timestamp component is t, so ids of
// delivery entries sort the same way as their attempt times. Times before
// the Unix epoch or past the ULID range are rejected.
func NewAt(t time.Time) (string, error) {
	if t.Before(time.Unix(0, 0)) {
		return "", fmt.Errorf("ulid timestamp %s before unix epoch", t.Format(time.RFC3339))
	}
	u, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("ulid at %s: %w", t.Format(time.RFC3339), err)
	}
	return u.String(), nil
}
