package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/middleware"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

// PledgeResponse describes a newly created pledge and the invoice to pay.
type PledgeResponse struct {
	ID               string  `json:"id" example:"5b0c7f1e-8a59-4d0e-9d7e-6a2b4c1d3e5f"`
	Status           string  `json:"status" example:"pending"`
	AmountSats       int64   `json:"amountSats" example:"500"`
	Invoice          string  `json:"invoice" example:"lnbc5u1p..."`
	RecipientAddress string  `json:"recipientAddress" example:"alice@getalby.com"`
	Description      *string `json:"description"`
}

// TrackSnapshot is the data of a "snapshot" event.
type TrackSnapshot struct {
	pledge.Snapshot
	ElapsedMs int64 `json:"elapsedMs"`
	Final     bool  `json:"final"`
}

// TrackError is the data of an "error" event. Polling continues after it.
type TrackError struct {
	Message   string `json:"message"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// TrackEnd is the data of the closing "end" event.
type TrackEnd struct {
	Reason string `json:"reason" enums:"terminal,timeout,cancelled"`
}

// CreatePledge godoc
// @ID          createPledge
// @Summary     Create a pledge
// @Description Requests an invoice for the Lightning Address and records a pending pledge to track.
// @Tags        Pledges
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.InvoiceRequest  true  "Address and amount"
// @Success     201  {object}  handlers.PledgeResponse
// @Failure     400  {object}  handlers.AmountRangeError
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /pledges [post]
func (h *Handlers) CreatePledge(c *gin.Context) {
	req, valid := bindInvoiceRequest(c)
	if !valid {
		return
	}

	p, inv, err := h.pledges.Create(c.Request.Context(), req.LightningAddress, req.AmountSats)
	if err != nil {
		var le *lnurl.Error
		if errors.As(err, &le) {
			failLNURL(c, err)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store pledge")
		return
	}
	ok(c, http.StatusCreated, PledgeResponse{
		ID:               p.ID,
		Status:           p.Status,
		AmountSats:       p.AmountSats,
		Invoice:          p.Invoice,
		RecipientAddress: p.RecipientAddress,
		Description:      inv.Description,
	})
}

// PledgeStatus godoc
// @ID          pledgeStatus
// @Summary     Get pledge status
// @Tags        Pledges
// @Produce     json
// @Param       id  path  string  true  "Pledge ID"
// @Success     200  {object}  pledge.Snapshot
// @Failure     400  {object}  handlers.ErrorResponse  "invalid_pledge_id"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse  "status_unavailable"
// @Router      /pledges/{id}/status [get]
func (h *Handlers) PledgeStatus(c *gin.Context) {
	snap, err := h.pledges.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		failPledge(c, err)
		return
	}
	ok(c, http.StatusOK, snap)
}

// TrackPledge godoc
// @ID          trackPledge
// @Summary     Stream pledge settlement
// @Description Polls the pledge status (every 3s for 2 minutes, then every 10s up to 12 minutes)
// @Description and streams Server-Sent Events: "snapshot" per successful fetch, "error" per failed
// @Description fetch, and a closing "end" carrying the stop reason.
// @Tags        Pledges
// @Produce     text/event-stream
// @Param       id  path  string  true  "Pledge ID"
// @Success     200  {object}  handlers.TrackSnapshot
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /pledges/{id}/track [get]
func (h *Handlers) TrackPledge(c *gin.Context) {
	ctx := c.Request.Context()
	lg := middleware.LoggerFrom(c)
	start := time.Now()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	reason, err := h.pledges.Track(ctx, c.Param("id"), func(ev pledge.Event) error {
		if ev.Err != nil {
			c.SSEvent("error", TrackError{Message: ev.Err.Error(), ElapsedMs: ev.Elapsed.Milliseconds()})
		} else {
			c.SSEvent("snapshot", TrackSnapshot{Snapshot: *ev.Snapshot, ElapsedMs: ev.Elapsed.Milliseconds(), Final: ev.Final})
		}
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		if c.Writer.Written() {
			lg.Warn().Err(err).Msg("pledge stream aborted")
			return
		}
		failPledge(c, err)
		return
	}

	if ctx.Err() == nil {
		c.SSEvent("end", TrackEnd{Reason: string(reason)})
		c.Writer.Flush()
	}
	lg.Debug().Str("reason", string(reason)).Dur("open_for", time.Since(start)).Msg("pledge stream closed")
}

func failPledge(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPledgeID):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPledgeID, err.Error())
	case errors.Is(err, services.ErrPledgeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeStatusUnavailable, "pledge status unavailable")
	}
}
