package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/observability"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/sats"
)

// ScopeInvoice namespaces idempotency keys for invoice requests.
const ScopeInvoice = "lightning.invoice"

// Resolver is the LNURL-pay capability used by InvoiceService.
type Resolver interface {
	ResolveAndRequestInvoice(ctx context.Context, address string, amountSats int64) (*lnurl.Invoice, error)
	LookupAddress(ctx context.Context, address string) (*lnurl.PayMetadata, error)
	Fallback() sats.Bounds
}

// AddressInfo describes what a Lightning Address accepts.
type AddressInfo struct {
	Address     string  `json:"address"`
	MinSendable int64   `json:"minSendable"`
	MaxSendable int64   `json:"maxSendable"`
	Description *string `json:"description"`
}

// InvoiceService resolves Lightning Addresses into invoices and remembers
// results per Idempotency-Key so retries do not mint a second invoice.
type InvoiceService struct {
	Resolver Resolver
	// DB stores idempotency records. Nil disables replay.
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

// RequestInvoice runs the LNURL-pay exchange. Errors are the resolver's typed
// *lnurl.Error values, passed through unchanged.
func (s *InvoiceService) RequestInvoice(ctx context.Context, address string, amountSats int64) (*lnurl.Invoice, error) {
	ctx, span := otel.Tracer("services/InvoiceService").Start(ctx, "RequestInvoice",
		trace.WithAttributes(attribute.Int64("amount.sats", amountSats)),
	)
	defer span.End()

	start := time.Now()
	inv, err := s.Resolver.ResolveAndRequestInvoice(ctx, address, amountSats)
	observability.InvoiceDuration.Observe(time.Since(start).Seconds())
	observability.InvoiceRequests.WithLabelValues(InvoiceOutcome(err)).Inc()

	lg := zerolog.Ctx(ctx)
	if err != nil {
		ev := lg.Warn()
		if code, ok := lnurl.UpstreamStatus(err); ok {
			ev = ev.Int("upstream_status", code)
		}
		ev.Err(err).Int64("amount_sats", amountSats).Str("outcome", InvoiceOutcome(err)).Msg("invoice request failed")
		return nil, err
	}
	lg.Info().Int64("amount_sats", amountSats).Msg("invoice issued")
	return inv, nil
}

// LookupAddress returns the sendable range (in sats) and description of an address.
func (s *InvoiceService) LookupAddress(ctx context.Context, address string) (*AddressInfo, error) {
	meta, err := s.Resolver.LookupAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	b := meta.Bounds(s.Resolver.Fallback())
	return &AddressInfo{
		Address:     address,
		MinSendable: b.Min,
		MaxSendable: b.Max,
		Description: meta.Description(),
	}, nil
}

// Replay returns the invoice previously stored for (userID, key) when it was
// issued for the same address and amount. A key first used with a different
// request yields ErrIdempotencyKeyReused; an unknown key yields found=false.
func (s *InvoiceService) Replay(ctx context.Context, userID, key, address string, amountSats int64) (*lnurl.Invoice, bool, error) {
	if s.DB == nil || key == "" {
		return nil, false, nil
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, ScopeInvoice, key, time.Now().UTC())
	if err != nil {
		return nil, false, nil
	}
	var inv lnurl.Invoice
	if err := json.Unmarshal([]byte(rec.Response), &inv); err != nil {
		return nil, false, nil
	}
	stored := rec.Fingerprint
	if stored == "" {
		stored = InvoiceFingerprint(inv.RecipientAddress, inv.AmountSats)
	}
	if stored != InvoiceFingerprint(address, amountSats) {
		return nil, false, ErrIdempotencyKeyReused
	}
	return &inv, true, nil
}

// InvoiceFingerprint identifies an invoice request by recipient and amount.
// Addresses compare case-insensitively.
func InvoiceFingerprint(address string, amountSats int64) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address)) + "\n" + strconv.FormatInt(amountSats, 10)))
	return hex.EncodeToString(sum[:])
}

// HasReplay matches middleware.IdempotencyLookup.
func (s *InvoiceService) HasReplay(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	if s.DB == nil || scope != ScopeInvoice {
		return false, nil
	}
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Remember stores inv under (userID, key). Failures are logged and ignored;
// a lost record only means a retry requests a fresh invoice.
func (s *InvoiceService) Remember(ctx context.Context, userID, key string, inv *lnurl.Invoice) {
	if s.DB == nil || key == "" || inv == nil {
		return
	}
	body, err := json.Marshal(inv)
	if err != nil {
		return
	}
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	fp := InvoiceFingerprint(inv.RecipientAddress, inv.AmountSats)
	if _, err := repo.CreateIdempotency(ctx, s.DB, userID, ScopeInvoice, key, fp, string(body), http.StatusOK, ttl); err != nil && !errors.Is(err, repo.ErrDuplicate) {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store idempotency record")
	}
}

// InvoiceOutcome maps a resolver result to a bounded metric label.
func InvoiceOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lnurl.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, lnurl.ErrAmountOutOfRange):
		return "amount_out_of_range"
	case errors.Is(err, lnurl.ErrUpstreamRejected):
		return "upstream_rejected"
	case errors.Is(err, lnurl.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, lnurl.ErrInvoiceRequestFailed):
		return "invoice_request_failed"
	case errors.Is(err, lnurl.ErrInvoiceMissing):
		return "invoice_missing"
	default:
		return "error"
	}
}
