package lnurl

import (
	"errors"
	"fmt"
)

// Failure kinds. Match with errors.Is; use errors.As with *Error for details.
var (
	// ErrInvalidAddress: the input is not user@domain. Never retryable.
	ErrInvalidAddress = errors.New("invalid lightning address format")
	// ErrUpstreamUnavailable: the well-known lookup failed at transport or HTTP level,
	// or returned something that could not be decoded.
	ErrUpstreamUnavailable = errors.New("lnurl service unavailable")
	// ErrUpstreamRejected: the recipient's service answered with status ERROR.
	ErrUpstreamRejected = errors.New("lnurl service rejected request")
	// ErrAmountOutOfRange: the amount falls outside the recipient's sendable range.
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrInvoiceRequestFailed: the callback request failed at transport or HTTP level.
	ErrInvoiceRequestFailed = errors.New("invoice request failed")
	// ErrInvoiceMissing: the callback answered successfully without a "pr" field.
	ErrInvoiceMissing = errors.New("invoice missing from lnurl response")
)

// Error is the typed failure returned by the Resolver.
//
// Reason carries the upstream's human-readable text verbatim for
// ErrUpstreamRejected. Min and Max are set (in sats) for ErrAmountOutOfRange.
type Error struct {
	Kind   error
	Reason string
	Min    int64
	Max    int64
	Err    error
}

func newError(kind error, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Retryable reports whether repeating the same request may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrUpstreamUnavailable, ErrInvoiceRequestFailed, ErrInvoiceMissing:
		return true
	}
	return false
}
