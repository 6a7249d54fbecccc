package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	"github.com/docuhub/docuhub-api/internal/repository"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type projectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, params repository.SubmitParams) (*models.ProjectHistory, error)
	Review(ctx context.Context, params repository.ReviewParams) error
	CreateVersion(ctx context.Context, baseID string, next *models.Project) error
	SetStatus(ctx context.Context, id string, status models.ProjectStatus) error
}

type projectDrawingStore interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Drawing, error)
}

type projectHistoryStore interface {
	LatestByProject(ctx context.Context, projectID string) (*models.ProjectHistory, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EventSink receives lifecycle events for asynchronous delivery. The engine
// only emits; a failed or slow sink never blocks a transition.
type EventSink interface {
	Publish(event models.ProjectEvent)
}

// EventSinkFunc adapts plain functions to the EventSink interface.
type EventSinkFunc func(event models.ProjectEvent)

// Publish implements EventSink.
func (f EventSinkFunc) Publish(event models.ProjectEvent) { f(event) }

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ProjectService drives the approval workflow: draft, submit, review,
// version. Every transition is guarded twice, a permission check here and a
// conditional update in the repository so racing writers resolve to exactly
// one winner.
type ProjectService struct {
	projects projectStore
	drawings projectDrawingStore
	history  projectHistoryStore
	audit    auditLogger
	events   EventSink
	cache    cacheInvalidator
	logger   *zap.Logger
	now      func() time.Time
	conflict func()
}

// ProjectServiceOption configures the service.
type ProjectServiceOption func(*ProjectService)

// WithProjectEventSink wires the lifecycle event sink.
func WithProjectEventSink(sink EventSink) ProjectServiceOption {
	return func(s *ProjectService) {
		if sink != nil {
			s.events = sink
		}
	}
}

// WithProjectCache wires the dashboard cache invalidator.
func WithProjectCache(cache cacheInvalidator) ProjectServiceOption {
	return func(s *ProjectService) {
		s.cache = cache
	}
}

// WithReviewConflictObserver registers a callback fired when a review loses
// the pending-status race.
func WithReviewConflictObserver(fn func()) ProjectServiceOption {
	return func(s *ProjectService) {
		if fn != nil {
			s.conflict = fn
		}
	}
}

// WithProjectClock overrides the time source.
func WithProjectClock(now func() time.Time) ProjectServiceOption {
	return func(s *ProjectService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewProjectService constructs the lifecycle engine.
func NewProjectService(projects projectStore, drawings projectDrawingStore, history projectHistoryStore, audit auditLogger, logger *zap.Logger, opts ...ProjectServiceOption) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ProjectService{
		projects: projects,
		drawings: drawings,
		history:  history,
		audit:    audit,
		events:   EventSinkFunc(func(models.ProjectEvent) {}),
		conflict: func() {},
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create registers a new Draft project owned by the actor.
func (s *ProjectService) Create(ctx context.Context, req dto.CreateProjectRequest, actor *models.JWTClaims) (*models.Project, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleViewer {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "viewers cannot create projects")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported priority")
	}
	project := &models.Project{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Priority:         priority,
		ClientDepartment: req.ClientDepartment,
		DeadlineDate:     req.DeadlineDate,
		FolderLink:       req.FolderLink,
		SubmittedBy:      actor.UserID,
	}
	if project.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "project name is required")
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}
	s.emitAudit(ctx, actor, models.AuditActionProjectCreate, project.ID, nil, project)
	return project, nil
}

// Get returns a project with its drawings, enforcing visibility.
func (s *ProjectService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ProjectResponse, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(project, actor); err != nil {
		return nil, err
	}
	drawings, err := s.drawings.ListByProject(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drawings")
	}
	return &dto.ProjectResponse{Project: *project, Drawings: drawings}, nil
}

// List returns projects visible to the actor. Reviewers see everything
// except other users' drafts; submitters see their own work plus every
// approved project; viewers see approved projects only.
func (s *ProjectService) List(ctx context.Context, query dto.ProjectQuery, actor *models.JWTClaims) (*dto.ProjectListResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.ProjectFilter{
		ProjectGroupID: query.GroupID,
		Search:         query.Search,
		Page:           query.Page,
		PageSize:       query.PageSize,
		SortBy:         query.SortBy,
		SortOrder:      query.SortOrder,
	}
	if query.Status != "" {
		status := models.ProjectStatus(query.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported status filter")
		}
		filter.Status = []models.ProjectStatus{status}
	}
	if query.Priority != "" {
		priority := models.ProjectPriority(query.Priority)
		if !priority.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported priority filter")
		}
		filter.Priority = priority
	}
	switch {
	case actor.Role.IsReviewer():
		filter.HideDraftsExcept = actor.UserID
	case actor.Role == models.RoleSubmitter:
		filter.OwnerOrApprovedFor = actor.UserID
	default:
		filter.Status = []models.ProjectStatus{models.StatusApprovedEndorsed}
	}
	projects, total, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return &dto.ProjectListResponse{
		Items:      projects,
		Pagination: models.Pagination{Page: page, PageSize: size, TotalCount: total},
	}, nil
}

// Update edits project fields while the project is still editable.
func (s *ProjectService) Update(ctx context.Context, id string, req dto.UpdateProjectRequest, actor *models.JWTClaims) (*models.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(project, actor); err != nil {
		return nil, err
	}
	if !project.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "project can only be edited in Draft or Request_for_Revision")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "project name cannot be empty")
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported priority")
		}
		project.Priority = *req.Priority
	}
	if req.ClientDepartment != nil {
		project.ClientDepartment = *req.ClientDepartment
	}
	if req.DeadlineDate != nil {
		project.DeadlineDate = req.DeadlineDate
	}
	if req.FolderLink != nil {
		project.FolderLink = *req.FolderLink
	}
	if req.RevisionNotes != nil {
		project.RevisionNotes = *req.RevisionNotes
	}
	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "project status changed while editing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}
	s.emitAudit(ctx, actor, models.AuditActionProjectUpdate, project.ID, nil, project)
	return project, nil
}

// Submit moves a project into Pending_Approval, freezes the drawing snapshot
// into the ledger and notifies reviewers. Only the owner may submit.
func (s *ProjectService) Submit(ctx context.Context, id string, req dto.SubmitProjectRequest, actor *models.JWTClaims) (*models.ProjectHistory, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if project.SubmittedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only the project owner can submit")
	}
	if !project.Status.Submittable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "project can only be submitted from Draft or Request_for_Revision")
	}
	history, err := s.projects.Submit(ctx, repository.SubmitParams{
		ProjectID:      id,
		SubmittedBy:    actor.UserID,
		SubmissionLink: req.SubmissionLink,
		SubmittedAt:    s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoActiveDrawings):
			return nil, appErrors.ErrEmptySubmission
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "project was moved by a concurrent request")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit project")
		}
	}
	s.emitAudit(ctx, actor, models.AuditActionProjectSubmit, project.ID, project, history)
	s.events.Publish(models.ProjectEvent{
		Type:           models.EventProjectSubmitted,
		ProjectID:      project.ID,
		ProjectGroupID: project.ProjectGroupID,
		ProjectName:    project.Name,
		Version:        project.Version,
		Status:         models.StatusPendingApproval,
		ActorID:        actor.UserID,
		SubmitterID:    project.SubmittedBy,
		OccurredAt:     history.DateSubmitted,
	})
	s.invalidateDashboards(ctx)
	return history, nil
}

// Review records a reviewer decision on a pending project. Rejection and
// revision requests require comments. Of two concurrent reviews exactly one
// wins; the loser is told the project already moved.
func (s *ProjectService) Review(ctx context.Context, id string, req dto.ReviewProjectRequest, actor *models.JWTClaims) (*models.Project, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only approvers and admins can review")
	}
	if !req.Action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve, reject, or revise")
	}
	comments := strings.TrimSpace(req.Comments)
	if req.Action.RequiresComments() && comments == "" {
		return nil, appErrors.ErrMissingJustification
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusPendingApproval {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending projects can be reviewed")
	}

	target := req.Action.Status()
	approval := approvalFor(req.Action)
	reviewedAt := s.now()
	err = s.projects.Review(ctx, repository.ReviewParams{
		ProjectID:  id,
		Status:     target,
		Approval:   approval,
		Comments:   comments,
		ReviewedBy: actor.UserID,
		ReviewedAt: reviewedAt,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.conflict()
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "project was already reviewed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review project")
	}

	before := *project
	project.Status = target
	project.ReviewComments = comments
	project.ReviewedBy = &actor.UserID
	project.DateReviewed = &reviewedAt
	s.emitAudit(ctx, actor, models.AuditActionProjectReview, project.ID, &before, project)
	s.events.Publish(models.ProjectEvent{
		Type:           models.EventProjectReviewed,
		ProjectID:      project.ID,
		ProjectGroupID: project.ProjectGroupID,
		ProjectName:    project.Name,
		Version:        project.Version,
		Status:         target,
		ActorID:        actor.UserID,
		SubmitterID:    project.SubmittedBy,
		ReviewAction:   req.Action,
		Comments:       comments,
		OccurredAt:     reviewedAt,
	})
	s.invalidateDashboards(ctx)
	return project, nil
}

// BulkReview applies the same decision to several pending projects. Each
// project runs through the normal review path with its compare-and-set
// guard; failures are collected per project and never abort the rest.
func (s *ProjectService) BulkReview(ctx context.Context, req dto.BulkReviewRequest, actor *models.JWTClaims) (*dto.BulkReviewResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only approvers and admins can review")
	}
	if !req.Action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be approve, reject, or revise")
	}
	if req.Action.RequiresComments() && strings.TrimSpace(req.Comments) == "" {
		return nil, appErrors.ErrMissingJustification
	}
	if len(req.ProjectIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one project id is required")
	}

	result := &dto.BulkReviewResponse{
		Succeeded: []dto.BulkReviewResult{},
		Failed:    []dto.BulkReviewResult{},
	}
	decision := dto.ReviewProjectRequest{Action: req.Action, Comments: req.Comments}
	seen := make(map[string]struct{}, len(req.ProjectIDs))
	for _, id := range req.ProjectIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		project, err := s.Review(ctx, id, decision, actor)
		if err != nil {
			result.Failed = append(result.Failed, dto.BulkReviewResult{
				ProjectID: id,
				Error:     appErrors.FromError(err).Message,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, dto.BulkReviewResult{
			ProjectID: id,
			Status:    project.Status,
		})
	}
	return result, nil
}

// CreateNewVersion spawns the next version of an approved or
// revision-requested project. The base project is left untouched, the new
// version starts as an empty Draft and stays owned by the base submitter
// even when an admin triggers it.
func (s *ProjectService) CreateNewVersion(ctx context.Context, id string, req dto.NewVersionRequest, actor *models.JWTClaims) (*models.Project, error) {
	base, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(base, actor); err != nil {
		return nil, err
	}
	if !base.Status.Versionable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "new versions require an approved or revision-requested baseline")
	}
	next := &models.Project{
		Name:             base.Name,
		Description:      base.Description,
		Priority:         base.Priority,
		ClientDepartment: base.ClientDepartment,
		DeadlineDate:     base.DeadlineDate,
		FolderLink:       base.FolderLink,
		RevisionNotes:    req.RevisionNotes,
		SubmittedBy:      base.SubmittedBy,
	}
	if err := s.projects.CreateVersion(ctx, base.ID, next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "baseline status changed while creating the version")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create new version")
	}
	s.emitAudit(ctx, actor, models.AuditActionProjectVersion, next.ID, base, next)
	s.events.Publish(models.ProjectEvent{
		Type:           models.EventProjectVersioned,
		ProjectID:      next.ID,
		ProjectGroupID: next.ProjectGroupID,
		ProjectName:    next.Name,
		Version:        next.Version,
		Status:         next.Status,
		ActorID:        actor.UserID,
		SubmitterID:    next.SubmittedBy,
		OccurredAt:     s.now(),
	})
	s.invalidateDashboards(ctx)
	return next, nil
}

// Delete removes a project. Owners may delete their own drafts; admins may
// delete any project. The submission ledger survives either way.
func (s *ProjectService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	isOwner := project.SubmittedBy == actor.UserID
	if actor.Role != models.RoleAdmin {
		if !isOwner {
			return appErrors.Clone(appErrors.ErrPermissionDenied, "only the owner or an admin can delete a project")
		}
		if project.Status != models.StatusDraft {
			return appErrors.Clone(appErrors.ErrInvalidState, "only draft projects can be deleted by their owner")
		}
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	s.emitAudit(ctx, actor, models.AuditActionProjectDelete, id, project, nil)
	s.invalidateDashboards(ctx)
	return nil
}

// SetAdministrativeStatus forces a project into an administrative state such
// as Rescinded_Revoked or Obsolete. Admin only, and the justification is
// mandatory because the change bypasses the normal flow.
func (s *ProjectService) SetAdministrativeStatus(ctx context.Context, id string, req dto.AdminStatusRequest, actor *models.JWTClaims) (*models.Project, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only admins can override project status")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported status")
	}
	if strings.TrimSpace(req.Justification) == "" {
		return nil, appErrors.ErrMissingJustification
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status == req.Status {
		return project, nil
	}
	if err := s.projects.SetStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to override status")
	}
	before := *project
	project.Status = req.Status
	s.emitAudit(ctx, actor, models.AuditActionProjectStatus, project.ID, &before, map[string]string{
		"status":        string(req.Status),
		"justification": req.Justification,
	})
	s.invalidateDashboards(ctx)
	return project, nil
}

// Restore returns an administratively parked project to the state implied by
// its latest ledger entry, or to Draft when it was never submitted.
func (s *ProjectService) Restore(ctx context.Context, id string, actor *models.JWTClaims) (*models.Project, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "only admins can restore projects")
	}
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusRescindedRevoked && project.Status != models.StatusObsolete {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only rescinded or obsolete projects can be restored")
	}

	restored := models.StatusDraft
	latest, err := s.history.LatestByProject(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission history")
	}
	if latest != nil {
		switch latest.ApprovalStatus {
		case models.ApprovalApproved:
			restored = models.StatusApprovedEndorsed
		case models.ApprovalRejected:
			restored = models.StatusRejected
		case models.ApprovalRevisionRequired:
			restored = models.StatusRequestForRevision
		case models.ApprovalPending:
			restored = models.StatusPendingApproval
		}
	}
	if err := s.projects.SetStatus(ctx, id, restored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore project")
	}
	before := *project
	project.Status = restored
	s.emitAudit(ctx, actor, models.AuditActionProjectRestore, project.ID, &before, project)
	s.invalidateDashboards(ctx)
	return project, nil
}

func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

func (s *ProjectService) canView(project *models.Project, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if project.SubmittedBy == actor.UserID {
		return nil
	}
	if actor.Role.IsReviewer() {
		if project.Status == models.StatusDraft {
			return appErrors.Clone(appErrors.ErrPermissionDenied, "drafts are visible to their owner only")
		}
		return nil
	}
	if project.Status == models.StatusApprovedEndorsed {
		return nil
	}
	return appErrors.Clone(appErrors.ErrPermissionDenied, "project is not visible to this account")
}

func (s *ProjectService) requireOwnerOrAdmin(project *models.Project, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if project.SubmittedBy != actor.UserID && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrPermissionDenied, "only the project owner or an admin can do this")
	}
	return nil
}

func (s *ProjectService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *ProjectService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "project",
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "project-service",
	}
	if actor != nil {
		log.UserID = &actor.UserID
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			log.OldValues = raw
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			log.NewValues = raw
		}
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func approvalFor(action models.ReviewAction) models.ApprovalStatus {
	switch action {
	case models.ReviewApprove:
		return models.ApprovalApproved
	case models.ReviewReject:
		return models.ApprovalRejected
	default:
		return models.ApprovalRevisionRequired
	}
}
