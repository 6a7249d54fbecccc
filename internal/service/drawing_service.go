package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	"github.com/docuhub/docuhub-api/internal/repository"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type drawingStore interface {
	Create(ctx context.Context, drawing *models.Drawing) error
	GetByID(ctx context.Context, id string) (*models.Drawing, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Drawing, error)
	Update(ctx context.Context, drawing *models.Drawing) error
	Delete(ctx context.Context, projectID, drawingID string) error
}

type drawingProjectStore interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
}

var (
	drawingNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]{4}$`)
	scaleRatioPattern    = regexp.MustCompile(`^1:\d+$`)
)

// DrawingService manages the drawing registry of editable projects.
type DrawingService struct {
	drawings drawingStore
	projects drawingProjectStore
	audit    auditLogger
	logger   *zap.Logger
}

// NewDrawingService constructs the registry service.
func NewDrawingService(drawings drawingStore, projects drawingProjectStore, audit auditLogger, logger *zap.Logger) *DrawingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrawingService{drawings: drawings, projects: projects, audit: audit, logger: logger}
}

// Add attaches a new drawing to an editable project owned by the actor.
func (s *DrawingService) Add(ctx context.Context, projectID string, req dto.CreateDrawingRequest, actor *models.JWTClaims) (*models.Drawing, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(project, actor); err != nil {
		return nil, err
	}
	drawing := &models.Drawing{
		ProjectID:     projectID,
		DrawingNumber: strings.ToUpper(strings.TrimSpace(req.DrawingNumber)),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		DrawingType:   req.DrawingType,
		Discipline:    req.Discipline,
		SheetSize:     strings.ToUpper(strings.TrimSpace(req.SheetSize)),
		ScaleRatio:    strings.TrimSpace(req.ScaleRatio),
		RevisionLabel: strings.TrimSpace(req.RevisionLabel),
		SortOrder:     req.SortOrder,
		AddedBy:       actor.UserID,
	}
	if err := validateDrawing(drawing); err != nil {
		return nil, err
	}
	if err := s.drawings.Create(ctx, drawing); err != nil {
		return nil, s.mapMutationError(err, "failed to add drawing")
	}
	s.emitAudit(ctx, actor, models.AuditActionDrawingAdd, drawing.ID, drawing)
	return drawing, nil
}

// Update edits a drawing of an editable project.
func (s *DrawingService) Update(ctx context.Context, projectID, drawingID string, req dto.UpdateDrawingRequest, actor *models.JWTClaims) (*models.Drawing, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(project, actor); err != nil {
		return nil, err
	}
	drawing, err := s.drawings.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drawing")
	}
	if drawing.ProjectID != projectID {
		return nil, appErrors.ErrNotFound
	}
	if req.DrawingNumber != nil {
		drawing.DrawingNumber = strings.ToUpper(strings.TrimSpace(*req.DrawingNumber))
	}
	if req.Title != nil {
		drawing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		drawing.Description = strings.TrimSpace(*req.Description)
	}
	if req.DrawingType != nil {
		drawing.DrawingType = *req.DrawingType
	}
	if req.Discipline != nil {
		drawing.Discipline = *req.Discipline
	}
	if req.SheetSize != nil {
		drawing.SheetSize = strings.ToUpper(strings.TrimSpace(*req.SheetSize))
	}
	if req.ScaleRatio != nil {
		drawing.ScaleRatio = strings.TrimSpace(*req.ScaleRatio)
	}
	if req.RevisionLabel != nil {
		drawing.RevisionLabel = strings.TrimSpace(*req.RevisionLabel)
	}
	if req.SortOrder != nil {
		drawing.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		drawing.Status = *req.Status
	}
	if err := validateDrawing(drawing); err != nil {
		return nil, err
	}
	if err := s.drawings.Update(ctx, drawing); err != nil {
		return nil, s.mapMutationError(err, "failed to update drawing")
	}
	s.emitAudit(ctx, actor, models.AuditActionDrawingUpdate, drawing.ID, drawing)
	return drawing, nil
}

// Delete removes a drawing from an editable project.
func (s *DrawingService) Delete(ctx context.Context, projectID, drawingID string, actor *models.JWTClaims) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(project, actor); err != nil {
		return err
	}
	if err := s.drawings.Delete(ctx, projectID, drawingID); err != nil {
		return s.mapMutationError(err, "failed to delete drawing")
	}
	s.emitAudit(ctx, actor, models.AuditActionDrawingDelete, drawingID, nil)
	return nil
}

// List returns the drawings of a project visible to the actor.
func (s *DrawingService) List(ctx context.Context, projectID string, actor *models.JWTClaims) (*dto.DrawingListResponse, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if project.SubmittedBy != actor.UserID && !actor.Role.IsReviewer() &&
		project.Status != models.StatusApprovedEndorsed {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "project is not visible to this account")
	}
	drawings, err := s.drawings.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drawings")
	}
	return &dto.DrawingListResponse{ProjectID: projectID, Items: drawings}, nil
}

func (s *DrawingService) loadProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

func (s *DrawingService) requireOwnerOrAdmin(project *models.Project, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if project.SubmittedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "only the project owner or an admin can modify drawings")
	}
	return nil
}

func (s *DrawingService) mapMutationError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrProjectNotEditable):
		return appErrors.Clone(appErrors.ErrInvalidState, "drawings can only change while the project is editable")
	case errors.Is(err, repository.ErrDuplicateNumber):
		return appErrors.Clone(appErrors.ErrConflict, "drawing number is already used in this project")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.ErrNotFound
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func (s *DrawingService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, value interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "drawing",
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "drawing-service",
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if value != nil {
		if raw, err := json.Marshal(value); err == nil {
			log.NewValues = raw
		}
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

// validateDrawing enforces registry field rules: a 4-character alphanumeric
// drawing number, 1:n scale, a known sheet size, and a title or description.
func validateDrawing(d *models.Drawing) error {
	if !drawingNumberPattern.MatchString(d.DrawingNumber) {
		return appErrors.Clone(appErrors.ErrValidation, "drawing number must be exactly 4 alphanumeric characters")
	}
	if d.Title == "" && d.Description == "" {
		return appErrors.Clone(appErrors.ErrValidation, "drawing requires a title or a description")
	}
	if !d.DrawingType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported drawing type")
	}
	if !d.Discipline.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported discipline")
	}
	if d.ScaleRatio != "" && !scaleRatioPattern.MatchString(d.ScaleRatio) {
		return appErrors.Clone(appErrors.ErrValidation, "scale must use the 1:n form")
	}
	if d.SheetSize != "" {
		found := false
		for _, size := range models.SheetSizes {
			if size == d.SheetSize {
				found = true
				break
			}
		}
		if !found {
			return appErrors.Clone(appErrors.ErrValidation, "unsupported sheet size")
		}
	}
	if d.Status != "" {
		switch d.Status {
		case models.DrawingActive, models.DrawingInactive, models.DrawingReplaced, models.DrawingObsolete:
		default:
			return appErrors.Clone(appErrors.ErrValidation, "unsupported drawing status")
		}
	}
	return nil
}
