package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/docuhub/docuhub-api/internal/models"
)

const historyColumns = `id, project_id, project_group_id, version, submitted_by, date_submitted,
       submission_link, drawing_qty, drawing_numbers, receipt_id, approval_status`

// HistoryRepository reads the submission ledger. Rows are only ever written
// inside the submit and review transactions; this repository never mutates
// them.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByGroup returns the full ledger of a project lineage, oldest first.
func (r *HistoryRepository) ListByGroup(ctx context.Context, groupID string) ([]models.ProjectHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_history WHERE project_group_id = $1
        ORDER BY version ASC, date_submitted ASC`, historyColumns)
	var entries []models.ProjectHistory
	if err := r.db.SelectContext(ctx, &entries, query, groupID); err != nil {
		return nil, fmt.Errorf("list project history: %w", err)
	}
	return entries, nil
}

// ListByProject returns the ledger rows of a single project version, oldest
// first. Rows outlive their project, so this is the entry point into the
// ledger of a deleted project.
func (r *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]models.ProjectHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_history WHERE project_id = $1
        ORDER BY date_submitted ASC`, historyColumns)
	var entries []models.ProjectHistory
	if err := r.db.SelectContext(ctx, &entries, query, projectID); err != nil {
		return nil, fmt.Errorf("list project history: %w", err)
	}
	return entries, nil
}

// LatestByProject returns the most recent ledger row of one project version.
func (r *HistoryRepository) LatestByProject(ctx context.Context, projectID string) (*models.ProjectHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_history WHERE project_id = $1
        ORDER BY date_submitted DESC LIMIT 1`, historyColumns)
	var entry models.ProjectHistory
	if err := r.db.GetContext(ctx, &entry, query, projectID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByReceipt resolves a ledger row by its submission receipt.
func (r *HistoryRepository) FindByReceipt(ctx context.Context, receiptID string) (*models.ProjectHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_history WHERE receipt_id = $1 LIMIT 1`, historyColumns)
	var entry models.ProjectHistory
	if err := r.db.GetContext(ctx, &entry, query, receiptID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListApproved returns all approved ledger rows, newest first. Feeds the
// drawing register export.
func (r *HistoryRepository) ListApproved(ctx context.Context) ([]models.ProjectHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_history WHERE approval_status = $1
        ORDER BY date_submitted DESC`, historyColumns)
	var entries []models.ProjectHistory
	if err := r.db.SelectContext(ctx, &entries, query, models.ApprovalApproved); err != nil {
		return nil, fmt.Errorf("list approved history: %w", err)
	}
	return entries, nil
}
