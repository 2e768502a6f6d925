package dynamo

// DynamoDB attribute names used in keys, indexes and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotificationID = "notification_id"
	fieldEntryID        = "entry_id"
	fieldName           = "name"
	fieldRecipient      = "recipient"
	fieldStatus         = "status"
	fieldCreatedAt      = "created_at"
	fieldSubject        = "subject"
	fieldBody           = "body"
	fieldRead           = "read"
	fieldReadAt         = "read_at"
	fieldSentAt         = "sent_at"
	fieldRetryCount     = "retry_count"
	fieldUpdatedAt      = "updated_at"

	indexRecipientCreated = "recipient-created_at-index"
	indexStatusCreated    = "status-created_at-index"
)
