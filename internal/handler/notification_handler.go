package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/response"
)

type notificationService interface {
	Trail(ctx context.Context, projectID string, actor *models.JWTClaims) ([]models.EmailLog, error)
}

// NotificationHandler exposes the email notification trail.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Trail godoc
// @Summary Email notifications recorded for a project
// @Tags Notifications
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/notifications [get]
func (h *NotificationHandler) Trail(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "notification service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	logs, err := h.service.Trail(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
