// Package pledge tracks settlement of pledges by polling a status endpoint
// on a fast-then-slow schedule until the pledge leaves the pending state or
// the schedule times out.
package pledge

import (
	"context"
	"errors"
	"time"
)

// Status is the pledge state reported by the status endpoint.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSettled   Status = "settled"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether polling should stop on this status. Anything other
// than pending is terminal; an empty status means nothing is known yet.
func (s Status) Terminal() bool { return s != "" && s != StatusPending }

// Snapshot is one status fetch result.
type Snapshot struct {
	Status     Status     `json:"status"`
	AmountSats int64      `json:"amountSats"`
	SettledAt  *time.Time `json:"settledAt,omitempty"`
}

// FetchFunc loads the current snapshot for a pledge.
type FetchFunc func(ctx context.Context, pledgeID string) (*Snapshot, error)

// ErrFetchTransient wraps a single failed fetch. It is reported on the event
// stream and never stops a session.
var ErrFetchTransient = errors.New("pledge status fetch failed")
