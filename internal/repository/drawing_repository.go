package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docuhub/docuhub-api/internal/models"
)

// Sentinel errors for drawing mutations. The parent project row is locked
// for the duration of every mutation so drawing edits serialize against a
// concurrent submit.
var (
	ErrProjectNotEditable = errors.New("parent project is not editable")
	ErrDuplicateNumber    = errors.New("drawing number already used in project")
)

const drawingColumns = `id, project_id, drawing_number, title, description, drawing_type, discipline,
       sheet_size, scale_ratio, revision_label, version, sort_order, status, added_by, date_added`

// DrawingRepository persists the drawing registry.
type DrawingRepository struct {
	db *sqlx.DB
}

// NewDrawingRepository constructs the repository.
func NewDrawingRepository(db *sqlx.DB) *DrawingRepository {
	return &DrawingRepository{db: db}
}

// lockEditableProject locks the parent row and verifies the project still
// accepts drawing mutations. Returns the locked project so callers can make
// further decisions under the same lock.
func lockEditableProject(ctx context.Context, tx *sqlx.Tx, projectID string) (*models.Project, error) {
	var project models.Project
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 FOR UPDATE`, projectColumns)
	if err := tx.GetContext(ctx, &project, query, projectID); err != nil {
		return nil, err
	}
	if !project.Status.Editable() {
		return nil, ErrProjectNotEditable
	}
	return &project, nil
}

// Create attaches a drawing to a project. Fails when the drawing number is
// already used by an active drawing of the same project.
func (r *DrawingRepository) Create(ctx context.Context, drawing *models.Drawing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create drawing: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = lockEditableProject(ctx, tx, drawing.ProjectID); err != nil {
		return err
	}

	var exists int
	const dupQuery = `SELECT 1 FROM drawings WHERE project_id = $1 AND drawing_number = $2 AND status = 'Active' LIMIT 1`
	dupErr := tx.GetContext(ctx, &exists, dupQuery, drawing.ProjectID, drawing.DrawingNumber)
	if dupErr == nil {
		err = ErrDuplicateNumber
		return err
	}
	if dupErr != sql.ErrNoRows {
		err = fmt.Errorf("check drawing number: %w", dupErr)
		return err
	}

	if drawing.ID == "" {
		drawing.ID = uuid.NewString()
	}
	if drawing.Status == "" {
		drawing.Status = models.DrawingActive
	}
	if drawing.Version == 0 {
		drawing.Version = 1
	}
	if drawing.DateAdded.IsZero() {
		drawing.DateAdded = time.Now().UTC()
	}
	const query = `INSERT INTO drawings
	(id, project_id, drawing_number, title, description, drawing_type, discipline, sheet_size,
	 scale_ratio, revision_label, version, sort_order, status, added_by, date_added)
	VALUES (:id, :project_id, :drawing_number, :title, :description, :drawing_type, :discipline, :sheet_size,
	 :scale_ratio, :revision_label, :version, :sort_order, :status, :added_by, :date_added)`
	if _, err = tx.NamedExecContext(ctx, query, drawing); err != nil {
		return fmt.Errorf("create drawing: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create drawing: %w", err)
	}
	return nil
}

// GetByID fetches a drawing by identifier.
func (r *DrawingRepository) GetByID(ctx context.Context, id string) (*models.Drawing, error) {
	query := fmt.Sprintf(`SELECT %s FROM drawings WHERE id = $1`, drawingColumns)
	var drawing models.Drawing
	if err := r.db.GetContext(ctx, &drawing, query, id); err != nil {
		return nil, err
	}
	return &drawing, nil
}

// ListByProject returns all drawings of a project ordered for display.
func (r *DrawingRepository) ListByProject(ctx context.Context, projectID string) ([]models.Drawing, error) {
	query := fmt.Sprintf(`SELECT %s FROM drawings WHERE project_id = $1 ORDER BY sort_order, drawing_number`, drawingColumns)
	var drawings []models.Drawing
	if err := r.db.SelectContext(ctx, &drawings, query, projectID); err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	return drawings, nil
}

// Update modifies a drawing. The version counter bumps only once the parent
// project has been through review at least once, so pre-submission edits do
// not inflate it.
func (r *DrawingRepository) Update(ctx context.Context, drawing *models.Drawing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update drawing: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	project, lockErr := lockEditableProject(ctx, tx, drawing.ProjectID)
	if lockErr != nil {
		err = lockErr
		return err
	}
	if project.DateSubmitted != nil {
		drawing.Version++
	}

	const query = `UPDATE drawings SET drawing_number = :drawing_number, title = :title, description = :description,
        drawing_type = :drawing_type, discipline = :discipline, sheet_size = :sheet_size, scale_ratio = :scale_ratio,
        revision_label = :revision_label, version = :version, sort_order = :sort_order, status = :status
        WHERE id = :id`
	var result sql.Result
	if result, err = tx.NamedExecContext(ctx, query, drawing); err != nil {
		return fmt.Errorf("update drawing: %w", err)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check drawing update rows: %w", rowsErr)
		return err
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update drawing: %w", err)
	}
	return nil
}

// Delete removes a drawing from an editable project.
func (r *DrawingRepository) Delete(ctx context.Context, projectID, drawingID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete drawing: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = lockEditableProject(ctx, tx, projectID); err != nil {
		return err
	}

	var result sql.Result
	if result, err = tx.ExecContext(ctx, `DELETE FROM drawings WHERE id = $1 AND project_id = $2`, drawingID, projectID); err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check drawing delete rows: %w", rowsErr)
		return err
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete drawing: %w", err)
	}
	return nil
}

// CountAll returns the total number of drawings, optionally scoped to
// projects of one submitter.
func (r *DrawingRepository) CountAll(ctx context.Context, submittedBy string) (int, error) {
	query := `SELECT COUNT(*) FROM drawings d`
	args := []interface{}{}
	if submittedBy != "" {
		query += ` JOIN projects p ON p.id = d.project_id WHERE p.submitted_by = $1`
		args = append(args, submittedBy)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count drawings: %w", err)
	}
	return total, nil
}
