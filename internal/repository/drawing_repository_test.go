package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/models"
)

func newDrawingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDrawingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusDraft, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM drawings")).
		WithArgs("proj-1", "A101").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO drawings")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	drawing := &models.Drawing{
		ProjectID:     "proj-1",
		DrawingNumber: "A101",
		Title:         "Ground floor plan",
		DrawingType:   models.DrawingTypePlan,
		AddedBy:       "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), drawing))
	assert.NotEmpty(t, drawing.ID)
	assert.Equal(t, models.DrawingActive, drawing.Status)
	assert.Equal(t, 1, drawing.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryCreateRejectsDuplicateNumber(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusDraft, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM drawings")).
		WithArgs("proj-1", "A101").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Drawing{ProjectID: "proj-1", DrawingNumber: "A101"})
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryCreateRejectsLockedProject(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusPendingApproval, time.Now().UTC()))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Drawing{ProjectID: "proj-1", DrawingNumber: "A101"})
	require.ErrorIs(t, err, ErrProjectNotEditable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryUpdateBumpsVersionAfterSubmission(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	// parent went through review once, so the edit counts as a new revision
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusRequestForRevision, time.Now().UTC()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE drawings SET drawing_number")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	drawing := &models.Drawing{ID: "dwg-1", ProjectID: "proj-1", DrawingNumber: "A101", Version: 1, Status: models.DrawingActive}
	require.NoError(t, repo.Update(context.Background(), drawing))
	assert.Equal(t, 2, drawing.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryUpdateKeepsVersionBeforeSubmission(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusDraft, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE drawings SET drawing_number")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	drawing := &models.Drawing{ID: "dwg-1", ProjectID: "proj-1", DrawingNumber: "A101", Version: 1, Status: models.DrawingActive}
	require.NoError(t, repo.Update(context.Background(), drawing))
	assert.Equal(t, 1, drawing.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_group_id")).
		WithArgs("proj-1").
		WillReturnRows(projectRow("proj-1", "group-1", 1, models.StatusDraft, nil))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drawings WHERE id = $1")).
		WithArgs("dwg-1", "proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "proj-1", "dwg-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawingRepositoryListByProject(t *testing.T) {
	db, mock, cleanup := newDrawingRepoMock(t)
	defer cleanup()
	repo := NewDrawingRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "project_id", "drawing_number", "title", "description", "drawing_type", "discipline",
		"sheet_size", "scale_ratio", "revision_label", "version", "sort_order", "status", "added_by", "date_added",
	}).AddRow("dwg-1", "proj-1", "A101", "Ground floor plan", "", "Plan", "Architectural",
		"A1", "1:100", "P1", 1, 0, "Active", "user-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, project_id, drawing_number")).
		WithArgs("proj-1").
		WillReturnRows(rows)

	drawings, err := repo.ListByProject(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, drawings, 1)
	assert.Equal(t, "A101", drawings[0].DrawingNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
