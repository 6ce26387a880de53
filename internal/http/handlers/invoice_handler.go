package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/middleware"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

// InvoiceRequest asks for an invoice payable to a Lightning Address.
type InvoiceRequest struct {
	LightningAddress string `json:"lightningAddress" binding:"required,lnaddress" example:"alice@getalby.com"`
	AmountSats       int64  `json:"amountSats" binding:"required,gt=0" example:"500"`
}

// InvoiceResponse carries a BOLT11 invoice.
type InvoiceResponse struct {
	Invoice          string          `json:"invoice" example:"lnbc5u1p..."`
	AmountSats       int64           `json:"amountSats" example:"500"`
	RecipientAddress string          `json:"recipientAddress" example:"alice@getalby.com"`
	Description      *string         `json:"description" example:"Pay to Alice"`
	SuccessAction    json.RawMessage `json:"successAction" swaggertype:"object"`
}

func invoiceResponse(inv *lnurl.Invoice) InvoiceResponse {
	return InvoiceResponse{
		Invoice:          inv.PaymentRequest,
		AmountSats:       inv.AmountSats,
		RecipientAddress: inv.RecipientAddress,
		Description:      inv.Description,
		SuccessAction:    inv.SuccessAction,
	}
}

// bindInvoiceRequest binds the body shared by invoice and pledge creation and
// writes the 400 itself when binding fails.
func bindInvoiceRequest(c *gin.Context) (InvoiceRequest, bool) {
	var req InvoiceRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		req.LightningAddress = strings.TrimSpace(req.LightningAddress)
		return req, true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "LightningAddress" {
				fail(c, http.StatusBadRequest, ErrCodeInvalidAddress, lnurl.ErrInvalidAddress.Error())
				return req, false
			}
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amountSats must be a positive integer")
		return req, false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
	return req, false
}

// RequestInvoice godoc
// @ID          requestInvoice
// @Summary     Request a Lightning invoice
// @Description Resolves a Lightning Address via LNURL-pay and returns a BOLT11 invoice for amountSats.
// @Description Retries carrying the same Idempotency-Key return the first invoice instead of minting a new one.
// @Description Reusing a key with a different address or amount is rejected with 422.
// @Tags        Lightning
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                   false  "Key for safe retries"
// @Param       body             body    handlers.InvoiceRequest  true   "Address and amount"
// @Success     200  {object}  handlers.InvoiceResponse
// @Failure     400  {object}  handlers.AmountRangeError  "invalid_address, amount_out_of_range or bad_request"
// @Failure     422  {object}  handlers.ErrorResponse     "idempotency_key_reused"
// @Failure     429  {object}  handlers.ErrorResponse     "rate_limited"
// @Failure     500  {object}  handlers.ErrorResponse     "upstream_unavailable, upstream_rejected, invoice_request_failed or invoice_missing"
// @Router      /lightning/invoice [post]
func (h *Handlers) RequestInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	caller := middleware.CallerKey(c)
	key, _ := middleware.IdempotencyKey(c)

	req, valid := bindInvoiceRequest(c)
	if !valid {
		return
	}

	if key != "" && middleware.IsReplay(c) {
		inv, found, err := h.invoices.Replay(ctx, caller, key, req.LightningAddress, req.AmountSats)
		if errors.Is(err, services.ErrIdempotencyKeyReused) {
			fail(c, http.StatusUnprocessableEntity, ErrCodeIdempotencyKeyReused, err.Error())
			return
		}
		if found {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusOK, invoiceResponse(inv))
			return
		}
	}

	inv, err := h.invoices.RequestInvoice(ctx, req.LightningAddress, req.AmountSats)
	if err != nil {
		failLNURL(c, err)
		return
	}
	if key != "" {
		h.invoices.Remember(ctx, caller, key, inv)
	}
	ok(c, http.StatusOK, invoiceResponse(inv))
}

// LookupAddress godoc
// @ID          lookupAddress
// @Summary     Describe a Lightning Address
// @Description Runs only the LNURL well-known lookup and returns the sendable range in sats.
// @Tags        Lightning
// @Produce     json
// @Param       address  path  string  true  "Lightning Address"  example(alice@getalby.com)
// @Success     200  {object}  services.AddressInfo
// @Failure     400  {object}  handlers.ErrorResponse  "invalid_address"
// @Failure     500  {object}  handlers.ErrorResponse  "upstream_unavailable or upstream_rejected"
// @Router      /lightning/address/{address} [get]
func (h *Handlers) LookupAddress(c *gin.Context) {
	info, err := h.invoices.LookupAddress(c.Request.Context(), strings.TrimSpace(c.Param("address")))
	if err != nil {
		failLNURL(c, err)
		return
	}
	ok(c, http.StatusOK, info)
}
