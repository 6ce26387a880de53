package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code (see errors.go)
	Code    string `json:"code" example:"invalid_address"`
	Message string `json:"message" example:"invalid lightning address format"`
}

// AmountRangeError is returned with amount_out_of_range. Bounds are in sats.
type AmountRangeError struct {
	ErrorResponse
	MinSendable int64 `json:"minSendable" example:"1"`
	MaxSendable int64 `json:"maxSendable" example:"100000"`
}

func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// failWith writes body (an ErrorResponse or a struct embedding one), filling
// in the request ID. 5xx responses are logged.
func failWith(c *gin.Context, status int, body any) {
	rid := middleware.RequestIDFrom(c)
	var code, msg string
	switch b := body.(type) {
	case ErrorResponse:
		b.RequestID = rid
		code, msg, body = b.Code, b.Message, b
	case AmountRangeError:
		b.RequestID = rid
		code, msg, body = b.Code, b.Message, b
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, body)
}

// Fail is the exported form of fail, used by the router for 404/405.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
