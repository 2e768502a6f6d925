package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")

	ErrTemplateNotFound       = errors.New("template not found")
	ErrUnresolvedPlaceholder  = errors.New("unresolved template placeholder")
	ErrUnsupportedChannel     = errors.New("unsupported channel")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDeliveryFailure        = errors.New("delivery failure")
	ErrStoreUnavailable       = errors.New("store unavailable")
)
