package domain

import "time"

// Outcome of a single delivery attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// AttemptResult is what a channel sender reports back for one attempt.
// Error is empty iff Success is true.
type AttemptResult struct {
	Success bool
	Error   string
}

// Succeeded builds a successful attempt result.
func Succeeded() AttemptResult { return AttemptResult{Success: true} }

// Failed builds a failed attempt result carrying the transport error text.
func Failed(detail string) AttemptResult {
	if detail == "" {
		detail = ErrDeliveryFailure.Error()
	}
	return AttemptResult{Error: detail}
}

// DeliveryEntry is one immutable row of the delivery log.
type DeliveryEntry struct {
	EntryID        string        `json:"id" dynamodbav:"entry_id"`
	NotificationID string        `json:"notification_id" dynamodbav:"notification_id"`
	Channel        Channel       `json:"channel" dynamodbav:"channel"`
	AttemptedAt    time.Time     `json:"attempted_at" dynamodbav:"attempted_at"`
	Latency        time.Duration `json:"latency_ns" dynamodbav:"latency_ns"`
	Outcome        Outcome       `json:"outcome" dynamodbav:"outcome"`
	Error          string        `json:"error,omitempty" dynamodbav:"error,omitempty"`
}

// DispatchResult reports what happened to one notification in a send, batch or retry.
// Err is set for caller errors (template lookup, invalid state, store failure);
// delivery failures are reported through Outcome and Error only.
type DispatchResult struct {
	NotificationID string         `json:"id"`
	Status         Status         `json:"status"`
	Outcome        Outcome        `json:"outcome,omitempty"`
	Error          string         `json:"error,omitempty"`
	Skipped        bool           `json:"skipped,omitempty"`
	Entry          *DeliveryEntry `json:"entry,omitempty"`
	Err            error          `json:"-"`
}

// Stats aggregates the delivery log and notification set.
type Stats struct {
	Filter             *Channel        `json:"filter_channel"`
	TotalNotifications int             `json:"total_notifications"`
	TotalAttempts      int             `json:"total_delivery_attempts"`
	Successful         int             `json:"successful_deliveries"`
	SuccessRate        float64         `json:"success_rate"`
	CountsByChannel    map[Channel]int `json:"by_channel"`
	CountsByStatus     map[Status]int  `json:"by_status"`
	CountsByOutcome    map[Outcome]int `json:"by_outcome"`
}
