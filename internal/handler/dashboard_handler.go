package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/response"
)

type dashboardService interface {
	UserStats(ctx context.Context, actor *models.JWTClaims) (*dto.UserStatsResponse, error)
	AdminStats(ctx context.Context, actor *models.JWTClaims) (*dto.AdminStatsResponse, error)
}

// DashboardHandler exposes workflow statistics endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// UserStats godoc
// @Summary Submission figures for the current user
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/me [get]
func (h *DashboardHandler) UserStats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "dashboard service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.UserStats(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// AdminStats godoc
// @Summary System-wide workflow figures
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "dashboard service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.AdminStats(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
