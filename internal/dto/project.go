package dto

import (
	"time"

	"github.com/docuhub/docuhub-api/internal/models"
)

// CreateProjectRequest is the payload for creating a new Draft project.
type CreateProjectRequest struct {
	Name             string                 `json:"name" validate:"required,min=3,max=200"`
	Description      string                 `json:"description" validate:"max=2000"`
	Priority         models.ProjectPriority `json:"priority" validate:"omitempty"`
	ClientDepartment string                 `json:"clientDepartment" validate:"max=120"`
	DeadlineDate     *time.Time             `json:"deadlineDate"`
	FolderLink       string                 `json:"folderLink" validate:"omitempty,url"`
}

// UpdateProjectRequest carries partial edits to an editable project. Nil
// fields are left untouched.
type UpdateProjectRequest struct {
	Name             *string                 `json:"name" validate:"omitempty,min=3,max=200"`
	Description      *string                 `json:"description" validate:"omitempty,max=2000"`
	Priority         *models.ProjectPriority `json:"priority"`
	ClientDepartment *string                 `json:"clientDepartment" validate:"omitempty,max=120"`
	DeadlineDate     *time.Time              `json:"deadlineDate"`
	FolderLink       *string                 `json:"folderLink" validate:"omitempty,url"`
	RevisionNotes    *string                 `json:"revisionNotes" validate:"omitempty,max=2000"`
}

// SubmitProjectRequest is the payload for moving a project into review.
type SubmitProjectRequest struct {
	SubmissionLink string `json:"submissionLink" validate:"omitempty,url"`
}

// ReviewProjectRequest is the reviewer decision payload.
type ReviewProjectRequest struct {
	Action   models.ReviewAction `json:"action" validate:"required"`
	Comments string              `json:"comments" validate:"max=2000"`
}

// BulkReviewRequest applies one reviewer decision to several pending
// projects at once.
type BulkReviewRequest struct {
	ProjectIDs []string            `json:"projectIds" validate:"required,min=1,max=50"`
	Action     models.ReviewAction `json:"action" validate:"required"`
	Comments   string              `json:"comments" validate:"max=2000"`
}

// BulkReviewResult is the per-project outcome of a bulk review.
type BulkReviewResult struct {
	ProjectID string               `json:"projectId"`
	Status    models.ProjectStatus `json:"status,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// BulkReviewResponse splits a bulk review into successes and failures; a
// failed project never blocks the others.
type BulkReviewResponse struct {
	Succeeded []BulkReviewResult `json:"succeeded"`
	Failed    []BulkReviewResult `json:"failed"`
}

// NewVersionRequest optionally seeds notes for the spawned version.
type NewVersionRequest struct {
	RevisionNotes string `json:"revisionNotes" validate:"omitempty,max=2000"`
}

// AdminStatusRequest sets an administrative status outside the normal flow.
type AdminStatusRequest struct {
	Status        models.ProjectStatus `json:"status" validate:"required"`
	Justification string               `json:"justification" validate:"required,min=3,max=2000"`
}

// ProjectQuery captures list query parameters.
type ProjectQuery struct {
	Status    string `form:"status"`
	Priority  string `form:"priority"`
	GroupID   string `form:"groupId"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// ProjectResponse enriches a project row with its drawings when requested.
type ProjectResponse struct {
	models.Project
	Drawings []models.Drawing `json:"drawings,omitempty"`
}

// ProjectListResponse is the paginated list payload.
type ProjectListResponse struct {
	Items      []models.Project  `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}
