package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/models"
)

func newNotificationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	projectID := "proj-1"
	log := &models.EmailLog{
		ProjectID:      &projectID,
		RecipientEmail: "owner@example.com",
		RecipientName:  "Owner",
		TemplateType:   models.TemplateProjectApproved,
		Subject:        "Approved: Tower Block A v2",
	}
	require.NoError(t, repo.Create(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.Equal(t, models.EmailPending, log.Status)
	assert.False(t, log.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkFailedBumpsRetry(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE email_logs SET status = $2, error_message = $3, retry_count = retry_count + 1")).
		WithArgs("log-1", string(models.EmailFailed), "smtp unreachable").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "log-1", "smtp unreachable"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByProject(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "project_id", "recipient_email", "recipient_name", "template_type",
		"subject", "status", "error_message", "retry_count", "created_at",
	}).
		AddRow("log-2", "proj-1", "owner@example.com", "Owner", "project_approved",
			"Approved: Tower Block A v2", "SENT", "", 0, now).
		AddRow("log-1", "proj-1", "admin@example.com", "Admin", "admin_new_submission",
			"Submission awaiting review", "FAILED", "smtp unreachable", 1, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_logs WHERE project_id = $1")).
		WithArgs("proj-1").
		WillReturnRows(rows)

	logs, err := repo.ListByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.EmailSent, logs[0].Status)
	assert.Equal(t, 1, logs[1].RetryCount)
	require.NoError(t, mock.ExpectationsWereMet())
}
