package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	"github.com/docuhub/docuhub-api/internal/repository"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type drawingStoreStub struct {
	drawings map[string]*models.Drawing
	projects *projectStoreStub
}

func newDrawingStoreStub(projects *projectStoreStub) *drawingStoreStub {
	return &drawingStoreStub{drawings: make(map[string]*models.Drawing), projects: projects}
}

func (s *drawingStoreStub) editable(projectID string) error {
	project, ok := s.projects.projects[projectID]
	if !ok {
		return sql.ErrNoRows
	}
	if !project.Status.Editable() {
		return repository.ErrProjectNotEditable
	}
	return nil
}

func (s *drawingStoreStub) Create(ctx context.Context, drawing *models.Drawing) error {
	if err := s.editable(drawing.ProjectID); err != nil {
		return err
	}
	for _, existing := range s.drawings {
		if existing.ProjectID == drawing.ProjectID && existing.DrawingNumber == drawing.DrawingNumber && existing.Status != models.DrawingInactive {
			return repository.ErrDuplicateNumber
		}
	}
	drawing.ID = uuid.NewString()
	if drawing.Status == "" {
		drawing.Status = models.DrawingActive
	}
	if drawing.Version == 0 {
		drawing.Version = 1
	}
	s.drawings[drawing.ID] = drawing
	return nil
}

func (s *drawingStoreStub) GetByID(ctx context.Context, id string) (*models.Drawing, error) {
	drawing, ok := s.drawings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *drawing
	return &clone, nil
}

func (s *drawingStoreStub) ListByProject(ctx context.Context, projectID string) ([]models.Drawing, error) {
	var result []models.Drawing
	for _, drawing := range s.drawings {
		if drawing.ProjectID == projectID {
			result = append(result, *drawing)
		}
	}
	return result, nil
}

func (s *drawingStoreStub) Update(ctx context.Context, drawing *models.Drawing) error {
	if err := s.editable(drawing.ProjectID); err != nil {
		return err
	}
	if _, ok := s.drawings[drawing.ID]; !ok {
		return sql.ErrNoRows
	}
	s.drawings[drawing.ID] = drawing
	return nil
}

func (s *drawingStoreStub) Delete(ctx context.Context, projectID, drawingID string) error {
	if err := s.editable(projectID); err != nil {
		return err
	}
	drawing, ok := s.drawings[drawingID]
	if !ok || drawing.ProjectID != projectID {
		return sql.ErrNoRows
	}
	delete(s.drawings, drawingID)
	return nil
}

func newRegistry(t *testing.T) (*DrawingService, *projectStoreStub, *drawingStoreStub) {
	t.Helper()
	projects := newProjectStoreStub()
	drawings := newDrawingStoreStub(projects)
	svc := NewDrawingService(drawings, projects, &auditStub{}, nil)
	return svc, projects, drawings
}

func validDrawingRequest() dto.CreateDrawingRequest {
	return dto.CreateDrawingRequest{
		DrawingNumber: "a101",
		Title:         "Ground Floor Plan",
		DrawingType:   models.DrawingTypePlan,
		Discipline:    models.DisciplineArchitectural,
		SheetSize:     "a1",
		ScaleRatio:    "1:100",
	}
}

func TestDrawingServiceAddNormalizesFields(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")

	drawing, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	assert.Equal(t, "A101", drawing.DrawingNumber)
	assert.Equal(t, "A1", drawing.SheetSize)
	assert.Equal(t, models.DrawingActive, drawing.Status)
	assert.Equal(t, 1, drawing.Version)
	assert.Equal(t, "owner-1", drawing.AddedBy)
}

func TestDrawingServiceAddValidation(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")
	actor := claims("owner-1", models.RoleSubmitter)

	cases := []struct {
		name   string
		mutate func(*dto.CreateDrawingRequest)
	}{
		{"number too short", func(r *dto.CreateDrawingRequest) { r.DrawingNumber = "A1" }},
		{"number not alphanumeric", func(r *dto.CreateDrawingRequest) { r.DrawingNumber = "A-01" }},
		{"no title or description", func(r *dto.CreateDrawingRequest) { r.Title = "" }},
		{"bad type", func(r *dto.CreateDrawingRequest) { r.DrawingType = "Sketch" }},
		{"bad discipline", func(r *dto.CreateDrawingRequest) { r.Discipline = "Nautical" }},
		{"bad scale", func(r *dto.CreateDrawingRequest) { r.ScaleRatio = "100:1" }},
		{"bad sheet size", func(r *dto.CreateDrawingRequest) { r.SheetSize = "A9" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validDrawingRequest()
			tc.mutate(&req)
			_, err := svc.Add(context.Background(), project.ID, req, actor)
			requireAppError(t, err, appErrors.ErrValidation.Code)
		})
	}
}

func TestDrawingServiceAddRejectsDuplicateNumber(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")
	actor := claims("owner-1", models.RoleSubmitter)

	_, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), actor)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), project.ID, validDrawingRequest(), actor)
	requireAppError(t, err, appErrors.ErrConflict.Code)
}

func TestDrawingServiceAddRejectsLockedProject(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusPendingApproval, "owner-1")

	_, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), claims("owner-1", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrInvalidState.Code)
}

func TestDrawingServiceAddRequiresOwnerOrAdmin(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")

	_, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	// admins may edit on behalf of the owner
	_, err = svc.Add(context.Background(), project.ID, validDrawingRequest(), claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
}

func TestDrawingServiceUpdateScopedToProject(t *testing.T) {
	svc, projects, drawings := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")
	other := seedProject(projects, models.StatusDraft, "owner-1")
	actor := claims("owner-1", models.RoleSubmitter)

	drawing, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), actor)
	require.NoError(t, err)

	title := "Revised Plan"
	_, err = svc.Update(context.Background(), other.ID, drawing.ID, dto.UpdateDrawingRequest{Title: &title}, actor)
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	updated, err := svc.Update(context.Background(), project.ID, drawing.ID, dto.UpdateDrawingRequest{Title: &title}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Revised Plan", updated.Title)
	assert.Equal(t, "Revised Plan", drawings.drawings[drawing.ID].Title)
}

func TestDrawingServiceDelete(t *testing.T) {
	svc, projects, drawings := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")
	actor := claims("owner-1", models.RoleSubmitter)

	drawing, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), actor)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), project.ID, drawing.ID, actor))
	assert.Empty(t, drawings.drawings)

	err = svc.Delete(context.Background(), project.ID, drawing.ID, actor)
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestDrawingServiceListVisibility(t *testing.T) {
	svc, projects, _ := newRegistry(t)
	project := seedProject(projects, models.StatusDraft, "owner-1")
	actor := claims("owner-1", models.RoleSubmitter)

	_, err := svc.Add(context.Background(), project.ID, validDrawingRequest(), actor)
	require.NoError(t, err)

	list, err := svc.List(context.Background(), project.ID, actor)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	// drafts hide their registry from other submitters
	_, err = svc.List(context.Background(), project.ID, claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	// approved registries are public
	projects.projects[project.ID].Status = models.StatusApprovedEndorsed
	_, err = svc.List(context.Background(), project.ID, claims("view-1", models.RoleViewer))
	require.NoError(t, err)
}
