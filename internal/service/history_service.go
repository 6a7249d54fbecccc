package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
	"github.com/docuhub/docuhub-api/pkg/export"
	"github.com/docuhub/docuhub-api/pkg/storage"
)

type historyLedger interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.ProjectHistory, error)
	ListByProject(ctx context.Context, projectID string) ([]models.ProjectHistory, error)
	FindByReceipt(ctx context.Context, receiptID string) (*models.ProjectHistory, error)
	ListApproved(ctx context.Context) ([]models.ProjectHistory, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// HistoryConfig tunes export behaviour.
type HistoryConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// HistoryService serves the submission ledger and the approved drawing
// register exports.
type HistoryService struct {
	ledger   historyLedger
	projects drawingProjectStore
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      HistoryConfig
}

// NewHistoryService constructs the ledger service.
func NewHistoryService(ledger historyLedger, projects drawingProjectStore, store fileStorage, signer *storage.SignedURLSigner, cfg HistoryConfig, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &HistoryService{
		ledger:   ledger,
		projects: projects,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// HistoryFor returns the complete ledger of a project lineage: every
// submission of every version, oldest first. Owners and reviewers only.
// Ledger rows outlive their project, so a deleted project's history stays
// reachable through the rows themselves.
func (s *HistoryService) HistoryFor(ctx context.Context, projectID string, actor *models.JWTClaims) (*dto.HistoryResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.historyOfDeleted(ctx, projectID, actor)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project.SubmittedBy != actor.UserID && !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "submission history is restricted to the owner and reviewers")
	}
	entries, err := s.ledger.ListByGroup(ctx, project.ProjectGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submission history")
	}
	return &dto.HistoryResponse{ProjectGroupID: project.ProjectGroupID, Items: entries}, nil
}

// historyOfDeleted serves the ledger when the project row is gone. The rows
// carry the submitter, so ownership is checked against the ledger instead of
// the missing project.
func (s *HistoryService) historyOfDeleted(ctx context.Context, projectID string, actor *models.JWTClaims) (*dto.HistoryResponse, error) {
	anchor, err := s.ledger.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submission history")
	}
	if len(anchor) == 0 {
		return nil, appErrors.ErrNotFound
	}
	if anchor[0].SubmittedBy != actor.UserID && !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "submission history is restricted to the owner and reviewers")
	}
	entries, err := s.ledger.ListByGroup(ctx, anchor[0].ProjectGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submission history")
	}
	return &dto.HistoryResponse{ProjectGroupID: anchor[0].ProjectGroupID, Items: entries}, nil
}

// VerifyReceipt resolves a submission receipt to its ledger row.
func (s *HistoryService) VerifyReceipt(ctx context.Context, receiptID string, actor *models.JWTClaims) (*models.ProjectHistory, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	entry, err := s.ledger.FindByReceipt(ctx, strings.TrimSpace(receiptID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no submission matches this receipt")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve receipt")
	}
	if entry.SubmittedBy != actor.UserID && !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "receipt belongs to another submitter")
	}
	return entry, nil
}

// ExportRegister renders the approved drawing register as CSV or PDF, stores
// the file and returns a signed download URL. Reviewers only.
func (s *HistoryService) ExportRegister(ctx context.Context, format string, actor *models.JWTClaims) (*dto.RegisterExportResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "register exports are restricted to reviewers")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	entries, err := s.ledger.ListApproved(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved register")
	}
	dataset := registerDataset(entries)

	var payload []byte
	switch format {
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Approved Drawing Register")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render register export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("register/%s/%s.%s", time.Now().UTC().Format("2006-01-02"), exportID, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store register export")
	}
	token, _, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	return &dto.RegisterExportResponse{
		ExportID:    exportID,
		Format:      format,
		DownloadURL: fmt.Sprintf("%s/history/register/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
		ExpiresIn:   int(s.cfg.ResultTTL.Seconds()),
	}, nil
}

// OpenExport validates a signed token and opens the referenced file.
func (s *HistoryService) OpenExport(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

// CleanupExports removes expired export files.
func (s *HistoryService) CleanupExports() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func registerDataset(entries []models.ProjectHistory) export.Dataset {
	headers := []string{"Receipt", "Project", "Version", "Submitted By", "Date Submitted", "Drawings", "Drawing Numbers"}
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, map[string]string{
			"Receipt":         entry.ReceiptID,
			"Project":         entry.ProjectID,
			"Version":         strconv.Itoa(entry.Version),
			"Submitted By":    entry.SubmittedBy,
			"Date Submitted":  entry.DateSubmitted.UTC().Format(time.RFC3339),
			"Drawings":        strconv.Itoa(entry.DrawingQty),
			"Drawing Numbers": entry.DrawingNumbers,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
