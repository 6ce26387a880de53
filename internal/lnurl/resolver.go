// Package lnurl resolves Lightning Addresses to BOLT11 invoices using the
// two-step LNURL-pay exchange:
//
//  1. GET https://{domain}/.well-known/lnurlp/{user} for the pay metadata
//  2. GET {callback}?amount={millisats} for the invoice
//
// The amount is checked against the recipient's sendable range between the
// two requests so that a request guaranteed to fail never reaches the
// recipient's invoice endpoint. The resolver never retries; every failure is
// returned to the caller as an *Error.
package lnurl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/sats"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultScheme       = "https"
	defaultMaxBodyBytes = 1 << 20
)

// Config configures a Resolver. The zero value is usable.
type Config struct {
	// HTTPClient is used for both requests (optional).
	HTTPClient *http.Client
	// Timeout applies when HTTPClient is nil (defaults to 10s).
	Timeout time.Duration
	// Scheme for the well-known lookup (defaults to "https").
	Scheme string
	// Fallback bounds for sides of the sendable range the server omits
	// (defaults to sats.DefaultBounds).
	Fallback *sats.Bounds
	// MaxBodyBytes caps each response body (defaults to 1 MiB).
	MaxBodyBytes int64
	// UserAgent is sent on outbound requests when non-empty.
	UserAgent string
}

// Resolver performs LNURL-pay exchanges. It is safe for concurrent use.
type Resolver struct {
	httpClient   *http.Client
	scheme       string
	fallback     sats.Bounds
	maxBodyBytes int64
	userAgent    string
}

// NewResolver returns a Resolver for cfg, applying defaults.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}
	fallback := sats.DefaultBounds
	if cfg.Fallback != nil {
		fallback = *cfg.Fallback
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Resolver{
		httpClient:   httpClient,
		scheme:       scheme,
		fallback:     fallback,
		maxBodyBytes: maxBody,
		userAgent:    cfg.UserAgent,
	}
}

// Fallback returns the bounds applied when a server omits its sendable range.
func (r *Resolver) Fallback() sats.Bounds { return r.fallback }

// ResolveAndRequestInvoice runs the full exchange for address and amountSats.
func (r *Resolver) ResolveAndRequestInvoice(ctx context.Context, address string, amountSats int64) (*Invoice, error) {
	ctx, span := otel.Tracer("lnurl/Resolver").Start(ctx, "ResolveAndRequestInvoice",
		trace.WithAttributes(
			attribute.String("lnurl.address", address),
			attribute.Int64("amount.sats", amountSats),
		),
	)
	defer span.End()

	inv, err := r.resolveAndRequest(ctx, address, amountSats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return inv, nil
}

func (r *Resolver) resolveAndRequest(ctx context.Context, address string, amountSats int64) (*Invoice, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	meta, err := r.fetchPayMetadata(ctx, addr)
	if err != nil {
		return nil, err
	}

	bounds := meta.Bounds(r.fallback)
	if err := sats.ValidateRange(amountSats, bounds); err != nil {
		return nil, &Error{Kind: ErrAmountOutOfRange, Min: bounds.Min, Max: bounds.Max, Err: err}
	}

	resp, err := r.requestInvoice(ctx, meta.Callback, amountSats)
	if err != nil {
		return nil, err
	}

	return &Invoice{
		PaymentRequest:   resp.PR,
		AmountSats:       amountSats,
		RecipientAddress: address,
		Description:      meta.Description(),
		SuccessAction:    nonNullRaw(resp.SuccessAction),
	}, nil
}

// LookupAddress runs only the well-known lookup. It lets callers show the
// recipient's sendable range and description before asking for an amount.
func (r *Resolver) LookupAddress(ctx context.Context, address string) (*PayMetadata, error) {
	ctx, span := otel.Tracer("lnurl/Resolver").Start(ctx, "LookupAddress",
		trace.WithAttributes(attribute.String("lnurl.address", address)),
	)
	defer span.End()

	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	meta, err := r.fetchPayMetadata(ctx, addr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return meta, nil
}

func (r *Resolver) fetchPayMetadata(ctx context.Context, addr Address) (*PayMetadata, error) {
	ctx, span := otel.Tracer("lnurl/Resolver").Start(ctx, "fetchPayMetadata",
		trace.WithAttributes(attribute.String("lnurl.domain", addr.Domain)),
	)
	defer span.End()

	var meta PayMetadata
	if err := r.getJSON(ctx, addr.WellKnownURL(r.scheme), &meta); err != nil {
		return nil, newError(ErrUpstreamUnavailable, "", err)
	}
	if meta.Rejected() {
		return nil, newError(ErrUpstreamRejected, meta.Reason, nil)
	}
	return &meta, nil
}

func (r *Resolver) requestInvoice(ctx context.Context, callback string, amountSats int64) (*invoiceResponse, error) {
	cb, err := url.Parse(callback)
	if err != nil || !cb.IsAbs() || cb.Host == "" {
		return nil, newError(ErrUpstreamUnavailable, "", fmt.Errorf("invalid callback url %q", callback))
	}
	q := cb.Query()
	q.Set("amount", strconv.FormatInt(sats.ToMillisats(amountSats), 10))
	cb.RawQuery = q.Encode()

	ctx, span := otel.Tracer("lnurl/Resolver").Start(ctx, "requestInvoice",
		trace.WithAttributes(
			attribute.String("lnurl.callback.host", cb.Host),
			attribute.Int64("amount.msat", sats.ToMillisats(amountSats)),
		),
	)
	defer span.End()

	var resp invoiceResponse
	if err := r.getJSON(ctx, cb.String(), &resp); err != nil {
		return nil, newError(ErrInvoiceRequestFailed, "", err)
	}
	if isErrorStatus(resp.Status) {
		return nil, newError(ErrUpstreamRejected, resp.Reason, nil)
	}
	if resp.PR == "" {
		return nil, newError(ErrInvoiceMissing, "", nil)
	}
	return &resp, nil
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (r *Resolver) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, r.maxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, body)
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is the cause attached when an upstream answers with a non-2xx code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// UpstreamStatus returns the upstream HTTP status carried by err, if any.
func UpstreamStatus(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

func nonNullRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
