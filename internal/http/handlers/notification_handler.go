package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/middleware"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

// NotifyRequest asks for a notification to Recipient on behalf of the caller.
// The sender username is the caller identity, never a body field.
type NotifyRequest struct {
	RecipientUsername string `json:"recipientUsername" binding:"required,max=64" example:"bob"`
	RecipientEmail    string `json:"recipientEmail" binding:"omitempty,email,max=320" example:"bob@example.com"`
	RecipientName     string `json:"recipientName" binding:"max=200" example:"Bob"`
	SenderName        string `json:"senderName" binding:"max=200" example:"Alice"`
	SenderEmail       string `json:"senderEmail" binding:"omitempty,email,max=320" example:"alice@example.com"`
}

// NotifyResponse reports whether a job was queued or suppressed.
type NotifyResponse struct {
	Status string `json:"status" example:"queued" enums:"queued,duplicate"`
	JobID  string `json:"jobId,omitempty" example:"3f1c9a8e-2f4b-4c1e-9d8a-0b1c2d3e4f50"`
}

// Notify godoc
// @ID          notify
// @Summary     Enqueue a notification
// @Description Enqueues a notification job unless the same sender notified the same recipient within the dedup window.
// @Tags        Notifications
// @Accept      json
// @Produce     json
// @Param       X-Evento-User  header  string                  true  "Caller username"
// @Param       body           body    handlers.NotifyRequest  true  "Recipient and display details"
// @Success     202  {object}  handlers.NotifyResponse  "queued"
// @Success     200  {object}  handlers.NotifyResponse  "duplicate"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse  "enqueue_failed"
// @Router      /notifications [post]
func (h *Handlers) Notify(c *gin.Context) {
	sender, found := middleware.UserID(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		return
	}

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipientUsername required; emails must be valid")
		return
	}

	res, err := h.notifications.Notify(c.Request.Context(), services.NotificationRequest{
		SenderUsername:    sender,
		SenderName:        req.SenderName,
		SenderEmail:       req.SenderEmail,
		RecipientUsername: req.RecipientUsername,
		RecipientName:     req.RecipientName,
		RecipientEmail:    req.RecipientEmail,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrIdentityRequired):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		return
	case errors.Is(err, services.ErrInvalidRecipient):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrEnqueueFailed):
		fail(c, http.StatusInternalServerError, ErrCodeEnqueueFailed, services.ErrEnqueueFailed.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}

	if res.Duplicate {
		ok(c, http.StatusOK, NotifyResponse{Status: "duplicate"})
		return
	}
	ok(c, http.StatusAccepted, NotifyResponse{Status: "queued", JobID: res.JobID})
}
