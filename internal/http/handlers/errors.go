package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Lightning
	ErrCodeInvalidAddress       = "invalid_address"
	ErrCodeAmountOutOfRange     = "amount_out_of_range"
	ErrCodeUpstreamUnavailable  = "upstream_unavailable"
	ErrCodeUpstreamRejected     = "upstream_rejected"
	ErrCodeInvoiceRequestFailed = "invoice_request_failed"
	ErrCodeInvoiceMissing       = "invoice_missing"
	ErrCodeIdempotencyKeyReused = "idempotency_key_reused"

	// Notifications and pledges
	ErrCodeEnqueueFailed     = "enqueue_failed"
	ErrCodeInvalidPledgeID   = "invalid_pledge_id"
	ErrCodeStatusUnavailable = "status_unavailable"
)

// failLNURL maps a resolver error to its response. Format and range problems
// are the caller's (400); everything upstream is reported as 500.
func failLNURL(c *gin.Context, err error) {
	var le *lnurl.Error
	if !errors.As(err, &le) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}

	switch {
	case errors.Is(le, lnurl.ErrInvalidAddress):
		fail(c, http.StatusBadRequest, ErrCodeInvalidAddress, le.Error())
	case errors.Is(le, lnurl.ErrAmountOutOfRange):
		failWith(c, http.StatusBadRequest, AmountRangeError{
			ErrorResponse: ErrorResponse{Code: ErrCodeAmountOutOfRange, Message: le.Kind.Error()},
			MinSendable:   le.Min,
			MaxSendable:   le.Max,
		})
	case errors.Is(le, lnurl.ErrUpstreamRejected):
		msg := le.Reason
		if msg == "" {
			msg = le.Kind.Error()
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpstreamRejected, msg)
	case errors.Is(le, lnurl.ErrUpstreamUnavailable):
		fail(c, http.StatusInternalServerError, ErrCodeUpstreamUnavailable, le.Kind.Error())
	case errors.Is(le, lnurl.ErrInvoiceRequestFailed):
		fail(c, http.StatusInternalServerError, ErrCodeInvoiceRequestFailed, le.Kind.Error())
	case errors.Is(le, lnurl.ErrInvoiceMissing):
		fail(c, http.StatusInternalServerError, ErrCodeInvoiceMissing, le.Kind.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, le.Error())
	}
}
