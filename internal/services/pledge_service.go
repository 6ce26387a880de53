package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/observability"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
)

const maxPledgeIDLen = 64

// Invoicer issues invoices for new pledges.
type Invoicer interface {
	RequestInvoice(ctx context.Context, address string, amountSats int64) (*lnurl.Invoice, error)
}

// PledgeService creates pledges, reports their status and tracks settlement.
//
// Status comes from Remote when set (the platform's status endpoint) and from
// the local pledges table otherwise.
type PledgeService struct {
	DB       *gorm.DB
	Poller   *pledge.Poller
	Remote   *pledge.StatusClient
	Invoices Invoicer
}

// Create requests an invoice for address and stores a pending pledge for it.
func (s *PledgeService) Create(ctx context.Context, address string, amountSats int64) (*domain.Pledge, *lnurl.Invoice, error) {
	ctx, span := otel.Tracer("services/PledgeService").Start(ctx, "Create")
	defer span.End()

	inv, err := s.Invoices.RequestInvoice(ctx, address, amountSats)
	if err != nil {
		return nil, nil, err
	}
	p := &domain.Pledge{
		ID:               uuid.NewString(),
		Status:           string(pledge.StatusPending),
		AmountSats:       inv.AmountSats,
		Invoice:          inv.PaymentRequest,
		RecipientAddress: inv.RecipientAddress,
	}
	if err := repo.CreatePledge(ctx, s.DB, p); err != nil {
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("pledge.id", p.ID))
	return p, inv, nil
}

// Status returns the current snapshot of a pledge.
func (s *PledgeService) Status(ctx context.Context, id string) (*pledge.Snapshot, error) {
	if err := validatePledgeID(id); err != nil {
		return nil, err
	}
	if s.Remote != nil {
		return s.fetchRemote(ctx, id)
	}
	return s.localStatus(ctx, id)
}

func (s *PledgeService) localStatus(ctx context.Context, id string) (*pledge.Snapshot, error) {
	p, err := repo.GetPledge(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrPledgeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pledge.Snapshot{
		Status:     pledge.Status(p.Status),
		AmountSats: p.AmountSats,
		SettledAt:  p.SettledAt,
	}, nil
}

// fetchRemote reads the status endpoint and mirrors terminal states into the
// local table when the pledge is known locally.
func (s *PledgeService) fetchRemote(ctx context.Context, id string) (*pledge.Snapshot, error) {
	snap, err := s.Remote.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.DB != nil && snap.Status.Terminal() {
		err := repo.UpdatePledgeStatus(ctx, s.DB, id, string(snap.Status), snap.SettledAt)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("pledge_id", id).Msg("mirror pledge status")
		}
	}
	return snap, nil
}

func (s *PledgeService) fetch(ctx context.Context, id string) (*pledge.Snapshot, error) {
	snap, err := s.Status(ctx, id)
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.PollFetches.WithLabelValues(result).Inc()
	return snap, err
}

// Track polls id until settlement, timeout or cancellation, calling onEvent
// for every fetch. If onEvent returns an error (for example the client went
// away) the session is stopped. The stop reason is returned.
func (s *PledgeService) Track(ctx context.Context, id string, onEvent func(pledge.Event) error) (pledge.StopReason, error) {
	if err := validatePledgeID(id); err != nil {
		return pledge.StopNone, err
	}
	if s.Remote == nil {
		if _, err := s.localStatus(ctx, id); err != nil {
			return pledge.StopNone, err
		}
	}

	ctx, span := otel.Tracer("services/PledgeService").Start(ctx, "Track",
		trace.WithAttributes(attribute.String("pledge.id", id)),
	)
	defer span.End()

	lg := zerolog.Ctx(ctx).With().Str("pledge_id", id).Logger()
	observability.PollSessionsActive.Inc()
	defer observability.PollSessionsActive.Dec()

	sess := s.Poller.Track(ctx, id, s.fetch)
	stopped := false
	for ev := range sess.Events() {
		if ev.Err != nil {
			lg.Warn().Err(ev.Err).Dur("elapsed", ev.Elapsed).Msg("pledge status fetch failed")
		}
		if stopped {
			continue
		}
		if err := onEvent(ev); err != nil {
			sess.Stop()
			stopped = true
		}
	}

	reason := sess.Reason()
	observability.PollSessions.WithLabelValues(string(reason)).Inc()
	span.SetAttributes(attribute.String("stop.reason", string(reason)))
	lg.Info().Str("reason", string(reason)).Str("status", string(sess.Status())).Msg("pledge tracking stopped")
	return reason, nil
}

func validatePledgeID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxPledgeIDLen || strings.ContainsAny(id, "/?#") {
		return ErrInvalidPledgeID
	}
	return nil
}
