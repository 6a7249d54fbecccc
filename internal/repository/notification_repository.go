package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docuhub/docuhub-api/internal/models"
)

// NotificationRepository persists the email delivery log.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a pending email log row.
func (r *NotificationRepository) Create(ctx context.Context, log *models.EmailLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Status == "" {
		log.Status = models.EmailPending
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO email_logs (id, project_id, recipient_email, recipient_name, template_type, subject, status, error_message, retry_count, created_at)
        VALUES (:id, :project_id, :recipient_email, :recipient_name, :template_type, :subject, :status, :error_message, :retry_count, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return nil
}

// MarkSent records a successful hand-off to the delivery provider.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE email_logs SET status = $2, error_message = '' WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.EmailSent); err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure and bumps the retry counter.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id, reason string) error {
	const query = `UPDATE email_logs SET status = $2, error_message = $3, retry_count = retry_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.EmailFailed, reason); err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	return nil
}

// ListByProject returns the notification trail of one project, newest first.
func (r *NotificationRepository) ListByProject(ctx context.Context, projectID string) ([]models.EmailLog, error) {
	const query = `SELECT id, project_id, recipient_email, recipient_name, template_type, subject, status, error_message, retry_count, created_at
        FROM email_logs WHERE project_id = $1 ORDER BY created_at DESC`
	var logs []models.EmailLog
	if err := r.db.SelectContext(ctx, &logs, query, projectID); err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return logs, nil
}
