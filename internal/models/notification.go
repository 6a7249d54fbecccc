package models

import "time"

// EmailStatus tracks the state of a queued notification.
type EmailStatus string

const (
	EmailPending EmailStatus = "PENDING"
	EmailSent    EmailStatus = "SENT"
	EmailFailed  EmailStatus = "FAILED"
)

// Notification templates keyed by lifecycle outcome.
const (
	TemplateProjectSubmitted   = "project_submitted"
	TemplateProjectApproved    = "project_approved"
	TemplateProjectRejected    = "project_rejected"
	TemplateRevisionRequired   = "revision_required"
	TemplateNewVersionCreated  = "new_version_created"
	TemplateAdminNewSubmission = "admin_new_submission"
)

// EmailLog records each notification handed to the external delivery
// provider. The engine owns the row; actual delivery is external.
type EmailLog struct {
	ID             string      `db:"id" json:"id"`
	ProjectID      *string     `db:"project_id" json:"project_id,omitempty"`
	RecipientEmail string      `db:"recipient_email" json:"recipient_email"`
	RecipientName  string      `db:"recipient_name" json:"recipient_name"`
	TemplateType   string      `db:"template_type" json:"template_type"`
	Subject        string      `db:"subject" json:"subject"`
	Status         EmailStatus `db:"status" json:"status"`
	ErrorMessage   string      `db:"error_message" json:"error_message,omitempty"`
	RetryCount     int         `db:"retry_count" json:"retry_count"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}
