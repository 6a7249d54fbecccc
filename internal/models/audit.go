package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionProjectCreate  = "PROJECT_CREATE"
	AuditActionProjectUpdate  = "PROJECT_UPDATE"
	AuditActionProjectDelete  = "PROJECT_DELETE"
	AuditActionProjectSubmit  = "PROJECT_SUBMIT"
	AuditActionProjectReview  = "PROJECT_REVIEW"
	AuditActionProjectVersion = "PROJECT_VERSION"
	AuditActionProjectStatus  = "PROJECT_STATUS_ADMIN"
	AuditActionProjectRestore = "PROJECT_RESTORE"
	AuditActionDrawingAdd     = "DRAWING_ADD"
	AuditActionDrawingUpdate  = "DRAWING_UPDATE"
	AuditActionDrawingDelete  = "DRAWING_DELETE"
	AuditActionRegisterExport = "REGISTER_EXPORT"
	AuditActionUserAdmin      = "USER_ADMIN"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
