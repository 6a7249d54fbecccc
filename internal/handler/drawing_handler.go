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

type drawingService interface {
	Add(ctx context.Context, projectID string, req dto.CreateDrawingRequest, actor *models.JWTClaims) (*models.Drawing, error)
	Update(ctx context.Context, projectID, drawingID string, req dto.UpdateDrawingRequest, actor *models.JWTClaims) (*models.Drawing, error)
	Delete(ctx context.Context, projectID, drawingID string, actor *models.JWTClaims) error
	List(ctx context.Context, projectID string, actor *models.JWTClaims) (*dto.DrawingListResponse, error)
}

// DrawingHandler exposes REST endpoints for the drawing registry.
type DrawingHandler struct {
	service drawingService
}

// NewDrawingHandler constructs the handler.
func NewDrawingHandler(service drawingService) *DrawingHandler {
	return &DrawingHandler{service: service}
}

// List godoc
// @Summary List drawings of a project
// @Tags Drawings
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/drawings [get]
func (h *DrawingHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "drawing service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	list, err := h.service.List(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Add godoc
// @Summary Attach a drawing to an editable project
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param payload body dto.CreateDrawingRequest true "Drawing payload"
// @Success 201 {object} response.Envelope
// @Router /projects/{id}/drawings [post]
func (h *DrawingHandler) Add(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "drawing service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateDrawingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid drawing payload"))
		return
	}
	drawing, err := h.service.Add(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, drawing)
}

// Update godoc
// @Summary Edit a drawing
// @Tags Drawings
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param drawingId path string true "Drawing ID"
// @Param payload body dto.UpdateDrawingRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/drawings/{drawingId} [patch]
func (h *DrawingHandler) Update(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "drawing service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateDrawingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid drawing payload"))
		return
	}
	drawing, err := h.service.Update(c.Request.Context(), c.Param("id"), c.Param("drawingId"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drawing, nil)
}

// Delete godoc
// @Summary Remove a drawing from an editable project
// @Tags Drawings
// @Produce json
// @Param id path string true "Project ID"
// @Param drawingId path string true "Drawing ID"
// @Success 204 {object} response.Envelope
// @Router /projects/{id}/drawings/{drawingId} [delete]
func (h *DrawingHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "drawing service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("drawingId"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
