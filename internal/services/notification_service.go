package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/dedup"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/observability"
)

// JobQueue hands a notification to the delivery worker and returns a job ID.
type JobQueue interface {
	Enqueue(ctx context.Context, payload domain.NotificationPayload) (string, error)
}

// NotificationRequest is a request to notify Recipient on behalf of Sender.
type NotificationRequest struct {
	SenderUsername    string
	SenderName        string
	SenderEmail       string
	RecipientUsername string
	RecipientName     string
	RecipientEmail    string
}

// NotifyResult reports what Notify did.
type NotifyResult struct {
	Duplicate bool
	JobID     string
}

// NotificationService enqueues notifications at most once per
// (sender, recipient) pair within the dedup window.
type NotificationService struct {
	dedup *dedup.Cache
	queue JobQueue
}

// NewNotificationService wires the dedup cache and the queue backend.
func NewNotificationService(cache *dedup.Cache, queue JobQueue) *NotificationService {
	return &NotificationService{dedup: cache, queue: queue}
}

// Notify enqueues a job unless the pair was notified within the window.
// Usernames are case-folded for the dedup key so "Alice" and "alice" count
// as the same sender.
func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) (NotifyResult, error) {
	sender := s.normalize(req.SenderUsername)
	recipient := s.normalize(req.RecipientUsername)
	if sender == "" {
		return NotifyResult{}, ErrIdentityRequired
	}
	if recipient == "" {
		return NotifyResult{}, ErrInvalidRecipient
	}

	ctx, span := otel.Tracer("services/NotificationService").Start(ctx, "Notify",
		trace.WithAttributes(attribute.String("sender", sender)),
	)
	defer span.End()

	lg := zerolog.Ctx(ctx).With().Str("sender", sender).Str("recipient", recipient).Logger()

	if s.dedup.CheckAndRecord(sender, recipient) {
		observability.Notifications.WithLabelValues("duplicate").Inc()
		span.SetAttributes(attribute.Bool("duplicate", true))
		lg.Debug().Msg("notification suppressed as duplicate")
		return NotifyResult{Duplicate: true}, nil
	}
	observability.DedupEntries.Set(float64(s.dedup.Len()))

	jobID, err := s.queue.Enqueue(ctx, domain.NotificationPayload{
		RecipientUsername: strings.TrimSpace(req.RecipientUsername),
		RecipientEmail:    strings.TrimSpace(req.RecipientEmail),
		RecipientName:     strings.TrimSpace(req.RecipientName),
		SenderName:        strings.TrimSpace(req.SenderName),
		SenderUsername:    strings.TrimSpace(req.SenderUsername),
		SenderEmail:       strings.TrimSpace(req.SenderEmail),
	})
	if err != nil {
		s.dedup.Forget(sender, recipient)
		observability.Notifications.WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		lg.Error().Err(err).Msg("enqueue notification")
		return NotifyResult{}, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	observability.Notifications.WithLabelValues("queued").Inc()
	lg.Info().Str("job_id", jobID).Msg("notification queued")
	return NotifyResult{JobID: jobID}, nil
}

// normalize builds a Caser per call; Casers are stateful and not safe to share.
func (s *NotificationService) normalize(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}
