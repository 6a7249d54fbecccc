package models

import "time"

// ApprovalStatus is the review outcome recorded on a submission ledger row.
type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "PENDING"
	ApprovalApproved         ApprovalStatus = "APPROVED"
	ApprovalRejected         ApprovalStatus = "REJECTED"
	ApprovalRevisionRequired ApprovalStatus = "REVISION_REQUIRED"
)

// ProjectHistory is one immutable submission ledger row. Exactly one row is
// appended per submit; reviewing updates approval_status on that same row and
// never creates a second one. DrawingNumbers is a denormalized snapshot frozen
// at submission time so later drawing edits cannot rewrite the audit trail.
// Rows carry project_group_id so the trail survives deletion of the project.
type ProjectHistory struct {
	ID             string         `db:"id" json:"id"`
	ProjectID      string         `db:"project_id" json:"project_id"`
	ProjectGroupID string         `db:"project_group_id" json:"project_group_id"`
	Version        int            `db:"version" json:"version"`
	SubmittedBy    string         `db:"submitted_by" json:"submitted_by"`
	DateSubmitted  time.Time      `db:"date_submitted" json:"date_submitted"`
	SubmissionLink string         `db:"submission_link" json:"submission_link"`
	DrawingQty     int            `db:"drawing_qty" json:"drawing_qty"`
	DrawingNumbers string         `db:"drawing_numbers" json:"drawing_numbers"`
	ReceiptID      string         `db:"receipt_id" json:"receipt_id"`
	ApprovalStatus ApprovalStatus `db:"approval_status" json:"approval_status"`
}
