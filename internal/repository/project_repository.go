package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/docuhub/docuhub-api/internal/models"
)

// ErrNoActiveDrawings is returned by Submit when the project carries no
// active drawings at the moment of submission.
var ErrNoActiveDrawings = errors.New("project has no active drawings")

const projectColumns = `id, project_group_id, name, description, version, status, priority,
       client_department, deadline_date, folder_link, review_comments, revision_notes,
       submitted_by, reviewed_by, date_created, date_submitted, date_reviewed,
       created_at, updated_at`

// ProjectRepository persists project lifecycle data.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs the repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project row. A fresh project starts its own version
// group; versioned projects arrive with the group already set.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.ProjectGroupID == "" {
		project.ProjectGroupID = project.ID
	}
	if project.Version == 0 {
		project.Version = 1
	}
	if project.Status == "" {
		project.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if project.DateCreated.IsZero() {
		project.DateCreated = now
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	const query = `INSERT INTO projects
	(id, project_group_id, name, description, version, status, priority, client_department,
	 deadline_date, folder_link, review_comments, revision_notes, submitted_by, reviewed_by,
	 date_created, date_submitted, date_reviewed, created_at, updated_at)
	VALUES (:id, :project_group_id, :name, :description, :version, :status, :priority, :client_department,
	 :deadline_date, :folder_link, :review_comments, :revision_notes, :submitted_by, :reviewed_by,
	 :date_created, :date_submitted, :date_reviewed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetByID fetches a project by identifier including its drawing count.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	const query = `SELECT p.id, p.project_group_id, p.name, p.description, p.version, p.status, p.priority,
       p.client_department, p.deadline_date, p.folder_link, p.review_comments, p.revision_notes,
       p.submitted_by, p.reviewed_by, p.date_created, p.date_submitted, p.date_reviewed,
       (SELECT COUNT(*) FROM drawings d WHERE d.project_id = p.id AND d.status = 'Active') AS drawing_count,
       p.created_at, p.updated_at
	FROM projects p WHERE p.id = $1`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects matching the filter plus the total count.
func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error) {
	base := "FROM projects p"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("p.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SubmittedBy != "" {
		args = append(args, filter.SubmittedBy)
		conditions = append(conditions, fmt.Sprintf("p.submitted_by = $%d", len(args)))
	}
	if filter.ProjectGroupID != "" {
		args = append(args, filter.ProjectGroupID)
		conditions = append(conditions, fmt.Sprintf("p.project_group_id = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("p.priority = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.description) LIKE $%d)", len(args), len(args)))
	}
	if filter.OwnerOrApprovedFor != "" {
		args = append(args, filter.OwnerOrApprovedFor)
		conditions = append(conditions, fmt.Sprintf("(p.submitted_by = $%d OR p.status = '%s')", len(args), models.StatusApprovedEndorsed))
	}
	if filter.HideDraftsExcept != "" {
		args = append(args, filter.HideDraftsExcept)
		conditions = append(conditions, fmt.Sprintf("(p.status <> '%s' OR p.submitted_by = $%d)", models.StatusDraft, len(args)))
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":           "p.name",
		"status":         "p.status",
		"priority":       "p.priority",
		"date_created":   "p.date_created",
		"date_submitted": "p.date_submitted",
		"updated_at":     "p.updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "p.date_created"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.project_group_id, p.name, p.description, p.version, p.status, p.priority,
       p.client_department, p.deadline_date, p.folder_link, p.review_comments, p.revision_notes,
       p.submitted_by, p.reviewed_by, p.date_created, p.date_submitted, p.date_reviewed,
       (SELECT COUNT(*) FROM drawings d WHERE d.project_id = p.id AND d.status = 'Active') AS drawing_count,
       p.created_at, p.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}
	return projects, total, nil
}

// Update modifies the editable columns of a project. The conditional
// where-clause keeps a concurrent submit from being silently overwritten;
// zero rows affected means the status moved underneath the caller.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE projects SET name = :name, description = :description, priority = :priority,
        client_department = :client_department, deadline_date = :deadline_date, folder_link = :folder_link,
        revision_notes = :revision_notes, updated_at = :updated_at
        WHERE id = :id AND status IN ('%s', '%s')`,
		models.StatusDraft, models.StatusRequestForRevision)
	result, err := r.db.NamedExecContext(ctx, query, project)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check project update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a project and its drawings. History rows are keyed by
// project_group_id and survive on purpose.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM drawings WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete project drawings: %w", err)
	}
	var result sql.Result
	if result, err = tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check project delete rows: %w", rowsErr)
		return err
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}

// SubmitParams groups the inputs of a submit transition.
type SubmitParams struct {
	ProjectID      string
	SubmittedBy    string
	SubmissionLink string
	SubmittedAt    time.Time
}

// Submit moves a project into Pending_Approval and appends the submission
// ledger row, all in one transaction. The drawing snapshot is frozen here.
// The conditional update is the concurrency guard: zero rows affected means
// the project was not in a submittable status anymore and the caller gets
// sql.ErrNoRows.
func (r *ProjectRepository) Submit(ctx context.Context, params SubmitParams) (*models.ProjectHistory, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin submit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var project models.Project
	lockQuery := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 FOR UPDATE`, projectColumns)
	if err = tx.GetContext(ctx, &project, lockQuery, params.ProjectID); err != nil {
		return nil, err
	}
	if !project.Status.Submittable() {
		err = sql.ErrNoRows
		return nil, err
	}

	var numbers []string
	const drawingQuery = `SELECT drawing_number FROM drawings WHERE project_id = $1 AND status = 'Active' ORDER BY sort_order, drawing_number`
	if err = tx.SelectContext(ctx, &numbers, drawingQuery, params.ProjectID); err != nil {
		return nil, fmt.Errorf("snapshot drawings: %w", err)
	}
	if len(numbers) == 0 {
		err = ErrNoActiveDrawings
		return nil, err
	}

	updateQuery := fmt.Sprintf(`UPDATE projects SET status = '%s', date_submitted = $2, updated_at = $2,
        review_comments = '', reviewed_by = NULL, date_reviewed = NULL
        WHERE id = $1 AND status IN ('%s', '%s')`,
		models.StatusPendingApproval, models.StatusDraft, models.StatusRequestForRevision)
	var result sql.Result
	if result, err = tx.ExecContext(ctx, updateQuery, params.ProjectID, params.SubmittedAt); err != nil {
		return nil, fmt.Errorf("submit project: %w", err)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check submit rows: %w", rowsErr)
		return nil, err
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return nil, err
	}

	history := &models.ProjectHistory{
		ID:             uuid.NewString(),
		ProjectID:      project.ID,
		ProjectGroupID: project.ProjectGroupID,
		Version:        project.Version,
		SubmittedBy:    params.SubmittedBy,
		DateSubmitted:  params.SubmittedAt,
		SubmissionLink: params.SubmissionLink,
		DrawingQty:     len(numbers),
		DrawingNumbers: strings.Join(numbers, ", "),
		ReceiptID:      buildReceiptID(params.SubmittedAt),
		ApprovalStatus: models.ApprovalPending,
	}
	const historyQuery = `INSERT INTO project_history
	(id, project_id, project_group_id, version, submitted_by, date_submitted, submission_link,
	 drawing_qty, drawing_numbers, receipt_id, approval_status)
	VALUES (:id, :project_id, :project_group_id, :version, :submitted_by, :date_submitted, :submission_link,
	 :drawing_qty, :drawing_numbers, :receipt_id, :approval_status)`
	if _, err = tx.NamedExecContext(ctx, historyQuery, history); err != nil {
		return nil, fmt.Errorf("append submission history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submit: %w", err)
	}
	return history, nil
}

// ReviewParams groups the inputs of a review decision.
type ReviewParams struct {
	ProjectID  string
	Status     models.ProjectStatus
	Approval   models.ApprovalStatus
	Comments   string
	ReviewedBy string
	ReviewedAt time.Time
}

// Review records a reviewer decision. The conditional update only matches a
// Pending_Approval row, so of two concurrent reviews exactly one wins and
// the loser gets sql.ErrNoRows. The pending ledger row is resolved to the
// same outcome; no second row is created.
func (r *ProjectRepository) Review(ctx context.Context, params ReviewParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	updateQuery := fmt.Sprintf(`UPDATE projects SET status = $2, review_comments = $3, reviewed_by = $4,
        date_reviewed = $5, updated_at = $5
        WHERE id = $1 AND status = '%s'`, models.StatusPendingApproval)
	var result sql.Result
	if result, err = tx.ExecContext(ctx, updateQuery,
		params.ProjectID, params.Status, params.Comments, params.ReviewedBy, params.ReviewedAt); err != nil {
		return fmt.Errorf("review project: %w", err)
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("check review rows: %w", rowsErr)
		return err
	}
	if rows == 0 {
		err = sql.ErrNoRows
		return err
	}

	const historyQuery = `UPDATE project_history SET approval_status = $1
        WHERE id = (SELECT id FROM project_history WHERE project_id = $2 AND approval_status = 'PENDING'
                    ORDER BY date_submitted DESC LIMIT 1)`
	if _, err = tx.ExecContext(ctx, historyQuery, params.Approval, params.ProjectID); err != nil {
		return fmt.Errorf("resolve submission history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}
	return nil
}

// CreateVersion inserts the next version of a project lineage. The base row
// is locked so two concurrent calls cannot mint the same version number, and
// the status guard is re-checked under the lock.
func (r *ProjectRepository) CreateVersion(ctx context.Context, baseID string, next *models.Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin new version: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var base models.Project
	lockQuery := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 FOR UPDATE`, projectColumns)
	if err = tx.GetContext(ctx, &base, lockQuery, baseID); err != nil {
		return err
	}
	if !base.Status.Versionable() {
		err = sql.ErrNoRows
		return err
	}

	var maxVersion int
	const versionQuery = `SELECT COALESCE(MAX(version), 0) FROM projects WHERE project_group_id = $1`
	if err = tx.GetContext(ctx, &maxVersion, versionQuery, base.ProjectGroupID); err != nil {
		return fmt.Errorf("resolve group version: %w", err)
	}

	now := time.Now().UTC()
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	next.ProjectGroupID = base.ProjectGroupID
	next.Version = maxVersion + 1
	next.Status = models.StatusDraft
	next.DateCreated = now
	next.CreatedAt = now
	next.UpdatedAt = now
	const insertQuery = `INSERT INTO projects
	(id, project_group_id, name, description, version, status, priority, client_department,
	 deadline_date, folder_link, review_comments, revision_notes, submitted_by, reviewed_by,
	 date_created, date_submitted, date_reviewed, created_at, updated_at)
	VALUES (:id, :project_group_id, :name, :description, :version, :status, :priority, :client_department,
	 :deadline_date, :folder_link, :review_comments, :revision_notes, :submitted_by, :reviewed_by,
	 :date_created, :date_submitted, :date_reviewed, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, next); err != nil {
		return fmt.Errorf("insert new version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit new version: %w", err)
	}
	return nil
}

// SetStatus overrides a project status outside the normal flow. Used by the
// administrative override and restore paths; no status guard applies.
func (r *ProjectRepository) SetStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	const query = `UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set project status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus aggregates project counts per status, optionally scoped to a
// single submitter.
func (r *ProjectRepository) CountByStatus(ctx context.Context, submittedBy string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS total FROM projects`
	args := []interface{}{}
	if submittedBy != "" {
		query += ` WHERE submitted_by = $1`
		args = append(args, submittedBy)
	}
	query += ` GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountReviewedSince returns the number of projects reviewed on or after the
// given instant.
func (r *ProjectRepository) CountReviewedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM projects WHERE date_reviewed >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return 0, fmt.Errorf("count reviewed projects: %w", err)
	}
	return total, nil
}

// AvgReviewHours computes the mean submit-to-review turnaround in hours.
func (r *ProjectRepository) AvgReviewHours(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (date_reviewed - date_submitted)) / 3600), 0)
        FROM projects WHERE date_reviewed IS NOT NULL AND date_submitted IS NOT NULL`
	var hours float64
	if err := r.db.GetContext(ctx, &hours, query); err != nil {
		return 0, fmt.Errorf("average review hours: %w", err)
	}
	return hours, nil
}

// buildReceiptID mints a human-readable submission receipt.
func buildReceiptID(at time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("DCH-%s-%s", at.UTC().Format("20060102"), suffix)
}
