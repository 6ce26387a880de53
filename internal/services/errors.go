// Package services holds the application logic behind the HTTP handlers and
// CLI commands: invoice requests, notification enqueueing and pledge
// settlement tracking.
//
// Handlers translate these errors (and the typed *lnurl.Error) into HTTP
// statuses and stable error codes.
package services

import "errors"

var (
	// ErrIdentityRequired is returned when an operation needs a caller identity
	// and none was supplied.
	ErrIdentityRequired = errors.New("caller identity required")

	// ErrInvalidRecipient is returned when a notification has no usable
	// recipient username.
	ErrInvalidRecipient = errors.New("recipient username is required")

	// ErrEnqueueFailed wraps a queue backend failure. The dedup entry for the
	// pair is released so the caller may retry.
	ErrEnqueueFailed = errors.New("failed to enqueue notification")

	// ErrPledgeNotFound indicates the pledge does not exist.
	ErrPledgeNotFound = errors.New("pledge not found")

	// ErrIdempotencyKeyReused is returned when an Idempotency-Key is replayed
	// with a request body other than the one it was first used with.
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different request")

	// ErrInvalidPledgeID is returned for empty or oversized pledge IDs.
	ErrInvalidPledgeID = errors.New("invalid pledge id")
)
