// Package handlers implements the public HTTP API: Lightning invoice requests,
// address lookups, deduplicated notifications and pledge status/tracking.
//
// Handlers stay thin. They bind and validate input, call a service, and map
// service errors to the ErrorResponse envelope with a stable code.
package handlers

import (
	"context"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/domain"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

// InvoiceService resolves Lightning Addresses and stores replayable results.
type InvoiceService interface {
	RequestInvoice(ctx context.Context, address string, amountSats int64) (*lnurl.Invoice, error)
	LookupAddress(ctx context.Context, address string) (*services.AddressInfo, error)
	Replay(ctx context.Context, caller, key, address string, amountSats int64) (*lnurl.Invoice, bool, error)
	Remember(ctx context.Context, caller, key string, inv *lnurl.Invoice)
}

// NotificationService enqueues deduplicated notifications.
type NotificationService interface {
	Notify(ctx context.Context, req services.NotificationRequest) (services.NotifyResult, error)
}

// PledgeService creates pledges and reports or tracks their settlement.
type PledgeService interface {
	Create(ctx context.Context, address string, amountSats int64) (*domain.Pledge, *lnurl.Invoice, error)
	Status(ctx context.Context, id string) (*pledge.Snapshot, error)
	Track(ctx context.Context, id string, onEvent func(pledge.Event) error) (pledge.StopReason, error)
}

// Handlers groups the API endpoints.
type Handlers struct {
	invoices      InvoiceService
	notifications NotificationService
	pledges       PledgeService
}

// New returns Handlers bound to the given services and registers the custom
// binding tags used by the request DTOs.
func New(invoices InvoiceService, notifications NotificationService, pledges PledgeService) *Handlers {
	RegisterValidators()
	return &Handlers{invoices: invoices, notifications: notifications, pledges: pledges}
}

var registerOnce sync.Once

// RegisterValidators adds the "lnaddress" tag to gin's validator engine.
// Surrounding whitespace is ignored; handlers trim the bound value.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("lnaddress", func(fl validator.FieldLevel) bool {
				_, err := lnurl.ParseAddress(strings.TrimSpace(fl.Field().String()))
				return err == nil
			})
		}
	})
}
