package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/storage"
)

type ledgerStub struct {
	entries []models.ProjectHistory
}

func (s *ledgerStub) ListByGroup(ctx context.Context, groupID string) ([]models.ProjectHistory, error) {
	var result []models.ProjectHistory
	for _, entry := range s.entries {
		if entry.ProjectGroupID == groupID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (s *ledgerStub) ListByProject(ctx context.Context, projectID string) ([]models.ProjectHistory, error) {
	var result []models.ProjectHistory
	for _, entry := range s.entries {
		if entry.ProjectID == projectID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (s *ledgerStub) FindByReceipt(ctx context.Context, receiptID string) (*models.ProjectHistory, error) {
	for i := range s.entries {
		if s.entries[i].ReceiptID == receiptID {
			return &s.entries[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *ledgerStub) ListApproved(ctx context.Context) ([]models.ProjectHistory, error) {
	var result []models.ProjectHistory
	for _, entry := range s.entries {
		if entry.ApprovalStatus == models.ApprovalApproved {
			result = append(result, entry)
		}
	}
	return result, nil
}

func newLedgerService(t *testing.T) (*HistoryService, *ledgerStub, *projectStoreStub) {
	t.Helper()
	ledger := &ledgerStub{}
	projects := newProjectStoreStub()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewHistoryService(ledger, projects, store, signer, HistoryConfig{APIPrefix: "/api/v1"}, nil)
	return svc, ledger, projects
}

func ledgerEntry(groupID, projectID string, version int, status models.ApprovalStatus) models.ProjectHistory {
	return models.ProjectHistory{
		ID:             projectID + "-h",
		ProjectID:      projectID,
		ProjectGroupID: groupID,
		Version:        version,
		SubmittedBy:    "owner-1",
		DateSubmitted:  time.Date(2026, 3, version, 9, 0, 0, 0, time.UTC),
		DrawingQty:     2,
		DrawingNumbers: "A101, A102",
		ReceiptID:      "DCH-20260301-" + projectID,
		ApprovalStatus: status,
	}
}

func TestHistoryServiceReturnsFullLineage(t *testing.T) {
	svc, ledger, projects := newLedgerService(t)
	project := seedProject(projects, models.StatusApprovedEndorsed, "owner-1")
	ledger.entries = []models.ProjectHistory{
		ledgerEntry(project.ProjectGroupID, "v1", 1, models.ApprovalRejected),
		ledgerEntry(project.ProjectGroupID, project.ID, 2, models.ApprovalApproved),
		ledgerEntry("other-group", "x1", 1, models.ApprovalApproved),
	}

	resp, err := svc.HistoryFor(context.Background(), project.ID, claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	assert.Equal(t, project.ProjectGroupID, resp.ProjectGroupID)
	require.Len(t, resp.Items, 2)
}

func TestHistoryServiceSurvivesProjectDeletion(t *testing.T) {
	svc, ledger, _ := newLedgerService(t)

	// no project row exists for "gone-1"; only the ledger remembers it
	ledger.entries = []models.ProjectHistory{
		ledgerEntry("group-1", "gone-1", 1, models.ApprovalApproved),
		ledgerEntry("group-1", "sibling-2", 2, models.ApprovalPending),
	}

	resp, err := svc.HistoryFor(context.Background(), "gone-1", claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "group-1", resp.ProjectGroupID)
	require.Len(t, resp.Items, 2)

	// the recorded submitter keeps access too
	resp, err = svc.HistoryFor(context.Background(), "gone-1", claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	// anyone else still gets nothing
	_, err = svc.HistoryFor(context.Background(), "gone-1", claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	// a project that never existed has no ledger either
	_, err = svc.HistoryFor(context.Background(), "never-existed", claims("admin-1", models.RoleAdmin))
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestHistoryServiceRestrictsToOwnerAndReviewers(t *testing.T) {
	svc, _, projects := newLedgerService(t)
	project := seedProject(projects, models.StatusPendingApproval, "owner-1")

	_, err := svc.HistoryFor(context.Background(), project.ID, claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	_, err = svc.HistoryFor(context.Background(), project.ID, claims("approver-1", models.RoleApprover))
	require.NoError(t, err)
}

func TestHistoryServiceVerifyReceipt(t *testing.T) {
	svc, ledger, projects := newLedgerService(t)
	project := seedProject(projects, models.StatusApprovedEndorsed, "owner-1")
	entry := ledgerEntry(project.ProjectGroupID, project.ID, 1, models.ApprovalApproved)
	ledger.entries = []models.ProjectHistory{entry}

	found, err := svc.VerifyReceipt(context.Background(), "  "+entry.ReceiptID+" ", claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	assert.Equal(t, entry.ID, found.ID)

	_, err = svc.VerifyReceipt(context.Background(), "DCH-UNKNOWN", claims("owner-1", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	// a foreign submitter cannot resolve someone else's receipt
	_, err = svc.VerifyReceipt(context.Background(), entry.ReceiptID, claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)
}

func TestHistoryServiceExportRegisterCSV(t *testing.T) {
	svc, ledger, projects := newLedgerService(t)
	project := seedProject(projects, models.StatusApprovedEndorsed, "owner-1")
	ledger.entries = []models.ProjectHistory{
		ledgerEntry(project.ProjectGroupID, project.ID, 1, models.ApprovalApproved),
		ledgerEntry(project.ProjectGroupID, "rejected-1", 2, models.ApprovalRejected),
	}

	resp, err := svc.ExportRegister(context.Background(), "", claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.Format)
	require.Contains(t, resp.DownloadURL, "/api/v1/history/register/download/")

	token := resp.DownloadURL[strings.LastIndex(resp.DownloadURL, "/")+1:]
	file, err := svc.OpenExport(token)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	body := string(content)
	assert.Contains(t, body, "Receipt")
	assert.Contains(t, body, "DCH-20260301-"+project.ID)
	// only approved submissions make the register
	assert.NotContains(t, body, "rejected-1")
}

func TestHistoryServiceExportRegisterPermissions(t *testing.T) {
	svc, _, _ := newLedgerService(t)

	_, err := svc.ExportRegister(context.Background(), "csv", claims("sub-1", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	_, err = svc.ExportRegister(context.Background(), "xlsx", claims("admin-1", models.RoleAdmin))
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestHistoryServiceOpenExportRejectsForgedToken(t *testing.T) {
	svc, _, _ := newLedgerService(t)

	_, err := svc.OpenExport("not-a-real-token")
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
}
