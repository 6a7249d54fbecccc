package dto

import "github.com/docuhub/docuhub-api/internal/models"

// HistoryResponse is the full submission ledger for one project lineage,
// ordered oldest first.
type HistoryResponse struct {
	ProjectGroupID string                  `json:"projectGroupId"`
	Items          []models.ProjectHistory `json:"items"`
}

// RegisterExportRequest selects the export format for the drawing register.
type RegisterExportRequest struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// RegisterExportResponse carries the signed URL of a generated export file.
type RegisterExportResponse struct {
	ExportID    string `json:"exportId"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresInSeconds"`
}
