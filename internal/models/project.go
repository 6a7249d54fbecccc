package models

import "time"

// ProjectStatus is the closed set of lifecycle states. The engine never
// accepts or emits free-form status strings.
type ProjectStatus string

const (
	StatusDraft               ProjectStatus = "Draft"
	StatusPendingApproval     ProjectStatus = "Pending_Approval"
	StatusApprovedEndorsed    ProjectStatus = "Approved_Endorsed"
	StatusConditionalApproval ProjectStatus = "Conditional_Approval"
	StatusRejected            ProjectStatus = "Rejected"
	StatusRequestForRevision  ProjectStatus = "Request_for_Revision"
	StatusRescindedRevoked    ProjectStatus = "Rescinded_Revoked"
	StatusObsolete            ProjectStatus = "Obsolete"
)

// Valid reports whether the value is a member of the status enum.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApprovedEndorsed,
		StatusConditionalApproval, StatusRejected, StatusRequestForRevision,
		StatusRescindedRevoked, StatusObsolete:
		return true
	}
	return false
}

// Submittable reports whether a submit transition is allowed from this status.
func (s ProjectStatus) Submittable() bool {
	return s == StatusDraft || s == StatusRequestForRevision
}

// Versionable reports whether a new version may be spawned from this status.
// Conditional_Approval has no engine-driven entry transition but remains a
// valid baseline for new versions.
func (s ProjectStatus) Versionable() bool {
	return s == StatusApprovedEndorsed || s == StatusConditionalApproval || s == StatusRequestForRevision
}

// Editable reports whether the submitter may still mutate project fields and
// drawings.
func (s ProjectStatus) Editable() bool {
	return s == StatusDraft || s == StatusRequestForRevision
}

// Terminal reports whether the normal flow defines no forward transition.
// A new version spawns a sibling project instead of mutating these.
func (s ProjectStatus) Terminal() bool {
	switch s {
	case StatusApprovedEndorsed, StatusRejected, StatusRescindedRevoked, StatusObsolete:
		return true
	}
	return false
}

// ProjectPriority enumerates scheduling priorities.
type ProjectPriority string

const (
	PriorityLow    ProjectPriority = "Low"
	PriorityNormal ProjectPriority = "Normal"
	PriorityHigh   ProjectPriority = "High"
	PriorityUrgent ProjectPriority = "Urgent"
)

// Valid reports whether the value is a member of the priority enum.
func (p ProjectPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ReviewAction is the reviewer decision on a pending project.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
	ReviewRevise  ReviewAction = "revise"
)

// Valid reports whether the value is a supported review action.
func (a ReviewAction) Valid() bool {
	return a == ReviewApprove || a == ReviewReject || a == ReviewRevise
}

// Status returns the lifecycle status the action transitions into.
func (a ReviewAction) Status() ProjectStatus {
	switch a {
	case ReviewApprove:
		return StatusApprovedEndorsed
	case ReviewReject:
		return StatusRejected
	default:
		return StatusRequestForRevision
	}
}

// RequiresComments reports whether the reviewer must justify the outcome.
func (a ReviewAction) RequiresComments() bool {
	return a == ReviewReject || a == ReviewRevise
}

// Project represents one submittable documentation package. All versions of
// "the same" project share a project_group_id; version is monotonically
// increasing within the group.
type Project struct {
	ID               string          `db:"id" json:"id"`
	ProjectGroupID   string          `db:"project_group_id" json:"project_group_id"`
	Name             string          `db:"name" json:"name"`
	Description      string          `db:"description" json:"description"`
	Version          int             `db:"version" json:"version"`
	Status           ProjectStatus   `db:"status" json:"status"`
	Priority         ProjectPriority `db:"priority" json:"priority"`
	ClientDepartment string          `db:"client_department" json:"client_department"`
	DeadlineDate     *time.Time      `db:"deadline_date" json:"deadline_date,omitempty"`
	FolderLink       string          `db:"folder_link" json:"folder_link"`
	ReviewComments   string          `db:"review_comments" json:"review_comments"`
	RevisionNotes    string          `db:"revision_notes" json:"revision_notes"`
	SubmittedBy      string          `db:"submitted_by" json:"submitted_by"`
	ReviewedBy       *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	DateCreated      time.Time       `db:"date_created" json:"date_created"`
	DateSubmitted    *time.Time      `db:"date_submitted" json:"date_submitted,omitempty"`
	DateReviewed     *time.Time      `db:"date_reviewed" json:"date_reviewed,omitempty"`
	DrawingCount     int             `db:"drawing_count" json:"drawing_count"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// ProjectFilter constrains listing queries. The two visibility fields are
// applied on top of the explicit filters: OwnerOrApprovedFor narrows the
// result to rows owned by that user plus approved rows from anyone, and
// HideDraftsExcept drops Draft rows not owned by that user.
type ProjectFilter struct {
	Status             []ProjectStatus
	SubmittedBy        string
	ProjectGroupID     string
	Priority           ProjectPriority
	Search             string
	OwnerOrApprovedFor string
	HideDraftsExcept   string
	Page               int
	PageSize           int
	SortBy             string
	SortOrder          string
}
