package dto

import "github.com/docuhub/docuhub-api/internal/models"

// CreateDrawingRequest is the payload for attaching a drawing to a project.
type CreateDrawingRequest struct {
	DrawingNumber string                   `json:"drawingNumber" validate:"required,len=4,alphanum"`
	Title         string                   `json:"title" validate:"max=200"`
	Description   string                   `json:"description" validate:"max=2000"`
	DrawingType   models.DrawingType       `json:"drawingType" validate:"required"`
	Discipline    models.DrawingDiscipline `json:"discipline"`
	SheetSize     string                   `json:"sheetSize" validate:"omitempty"`
	ScaleRatio    string                   `json:"scaleRatio" validate:"omitempty"`
	RevisionLabel string                   `json:"revisionLabel" validate:"omitempty,max=10"`
	SortOrder     int                      `json:"sortOrder" validate:"gte=0"`
}

// UpdateDrawingRequest carries partial edits to a drawing. Nil fields are
// left untouched.
type UpdateDrawingRequest struct {
	DrawingNumber *string                   `json:"drawingNumber" validate:"omitempty,len=4,alphanum"`
	Title         *string                   `json:"title" validate:"omitempty,max=200"`
	Description   *string                   `json:"description" validate:"omitempty,max=2000"`
	DrawingType   *models.DrawingType       `json:"drawingType"`
	Discipline    *models.DrawingDiscipline `json:"discipline"`
	SheetSize     *string                   `json:"sheetSize"`
	ScaleRatio    *string                   `json:"scaleRatio"`
	RevisionLabel *string                   `json:"revisionLabel" validate:"omitempty,max=10"`
	SortOrder     *int                      `json:"sortOrder" validate:"omitempty,gte=0"`
	Status        *models.DrawingStatus     `json:"status"`
}

// DrawingListResponse wraps the drawings of one project.
type DrawingListResponse struct {
	ProjectID string           `json:"projectId"`
	Items     []models.Drawing `json:"items"`
}
