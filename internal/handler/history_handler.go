package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/response"
)

type historyService interface {
	HistoryFor(ctx context.Context, projectID string, actor *models.JWTClaims) (*dto.HistoryResponse, error)
	VerifyReceipt(ctx context.Context, receiptID string, actor *models.JWTClaims) (*models.ProjectHistory, error)
	ExportRegister(ctx context.Context, format string, actor *models.JWTClaims) (*dto.RegisterExportResponse, error)
	OpenExport(token string) (*os.File, error)
}

// HistoryHandler exposes the submission ledger and register exports.
type HistoryHandler struct {
	service historyService
}

// NewHistoryHandler constructs the handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// ProjectHistory godoc
// @Summary Submission ledger of a project lineage
// @Tags History
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/history [get]
func (h *HistoryHandler) ProjectHistory(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	history, err := h.service.HistoryFor(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// VerifyReceipt godoc
// @Summary Resolve a submission receipt
// @Tags History
// @Produce json
// @Param receiptId path string true "Receipt ID"
// @Success 200 {object} response.Envelope
// @Router /history/receipts/{receiptId} [get]
func (h *HistoryHandler) VerifyReceipt(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entry, err := h.service.VerifyReceipt(c.Request.Context(), c.Param("receiptId"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ExportRegister godoc
// @Summary Export the approved drawing register
// @Tags History
// @Produce json
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /history/register/export [post]
func (h *HistoryHandler) ExportRegister(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RegisterExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export parameters"))
		return
	}
	result, err := h.service.ExportRegister(c.Request.Context(), req.Format, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// DownloadExport godoc
// @Summary Download a register export via signed token
// @Tags History
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /history/register/download/{token} [get]
func (h *HistoryHandler) DownloadExport(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "history service not configured"))
		return
	}
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.OpenExport(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	name := filepath.Base(file.Name())
	mimeType := "text/csv"
	if strings.HasSuffix(name, ".pdf") {
		mimeType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mimeType, file, nil)
}
