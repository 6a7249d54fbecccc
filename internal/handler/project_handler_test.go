package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/middleware"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type fakeProjectSrv struct {
	project *models.Project
	history *models.ProjectHistory
	list    *dto.ProjectListResponse
	err     error

	bulk *dto.BulkReviewResponse

	lastID     string
	lastQuery  dto.ProjectQuery
	lastReview dto.ReviewProjectRequest
	lastBulk   dto.BulkReviewRequest
}

func (f *fakeProjectSrv) Create(context.Context, dto.CreateProjectRequest, *models.JWTClaims) (*models.Project, error) {
	return f.project, f.err
}

func (f *fakeProjectSrv) Get(_ context.Context, id string, _ *models.JWTClaims) (*dto.ProjectResponse, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ProjectResponse{Project: *f.project}, nil
}

func (f *fakeProjectSrv) List(_ context.Context, query dto.ProjectQuery, _ *models.JWTClaims) (*dto.ProjectListResponse, error) {
	f.lastQuery = query
	return f.list, f.err
}

func (f *fakeProjectSrv) Update(_ context.Context, id string, _ dto.UpdateProjectRequest, _ *models.JWTClaims) (*models.Project, error) {
	f.lastID = id
	return f.project, f.err
}

func (f *fakeProjectSrv) Delete(_ context.Context, id string, _ *models.JWTClaims) error {
	f.lastID = id
	return f.err
}

func (f *fakeProjectSrv) Submit(_ context.Context, id string, _ dto.SubmitProjectRequest, _ *models.JWTClaims) (*models.ProjectHistory, error) {
	f.lastID = id
	return f.history, f.err
}

func (f *fakeProjectSrv) Review(_ context.Context, id string, req dto.ReviewProjectRequest, _ *models.JWTClaims) (*models.Project, error) {
	f.lastID = id
	f.lastReview = req
	return f.project, f.err
}

func (f *fakeProjectSrv) BulkReview(_ context.Context, req dto.BulkReviewRequest, _ *models.JWTClaims) (*dto.BulkReviewResponse, error) {
	f.lastBulk = req
	return f.bulk, f.err
}

func (f *fakeProjectSrv) CreateNewVersion(_ context.Context, id string, _ dto.NewVersionRequest, _ *models.JWTClaims) (*models.Project, error) {
	f.lastID = id
	return f.project, f.err
}

func (f *fakeProjectSrv) SetAdministrativeStatus(_ context.Context, id string, _ dto.AdminStatusRequest, _ *models.JWTClaims) (*models.Project, error) {
	f.lastID = id
	return f.project, f.err
}

func (f *fakeProjectSrv) Restore(_ context.Context, id string, _ *models.JWTClaims) (*models.Project, error) {
	f.lastID = id
	return f.project, f.err
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func testRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestProjectHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProjectHandler(&fakeProjectSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects", `{"name":"Plant Upgrade"}`)

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{project: &models.Project{ID: "p-1", Name: "Plant Upgrade", Status: models.StatusDraft}}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects", `{"name":"Plant Upgrade"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var project models.Project
	assert.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, "p-1", project.ID)
	assert.Equal(t, models.StatusDraft, project.Status)
}

func TestProjectHandlerCreateRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProjectHandler(&fakeProjectSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects", `{"name":`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectHandlerListPassesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{list: &dto.ProjectListResponse{
		Items:      []models.Project{{ID: "p-1"}},
		Pagination: models.Pagination{Page: 2, PageSize: 5, TotalCount: 11},
	}}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodGet, "/projects?status=Draft&page=2&pageSize=5", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Draft", service.lastQuery.Status)
	assert.Equal(t, 2, service.lastQuery.Page)
	assert.Contains(t, rec.Body.String(), `"total_count":11`)
}

func TestProjectHandlerSubmitAcceptsEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{history: &models.ProjectHistory{ReceiptID: "SUB-20260828-0001", DrawingQty: 2}}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects/p-1/submit", "")
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", service.lastID)
	assert.Contains(t, rec.Body.String(), "SUB-20260828-0001")
}

func TestProjectHandlerSubmitConflictPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProjectHandler(&fakeProjectSrv{err: appErrors.ErrInvalidState})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects/p-1/submit", "")
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var env envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if assert.NotNil(t, env.Error) {
		assert.Equal(t, appErrors.ErrInvalidState.Code, env.Error.Code)
	}
}

func TestProjectHandlerReviewBindsDecision(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{project: &models.Project{ID: "p-1", Status: models.StatusApprovedEndorsed}}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects/p-1/review", `{"action":"approve","comments":"checked"}`)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "rev-1", Role: models.RoleApprover})

	handler.Review(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReviewApprove, service.lastReview.Action)
	assert.Equal(t, "checked", service.lastReview.Comments)
}

func TestProjectHandlerBulkReviewBindsPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{bulk: &dto.BulkReviewResponse{
		Succeeded: []dto.BulkReviewResult{{ProjectID: "p-1", Status: models.StatusApprovedEndorsed}},
		Failed:    []dto.BulkReviewResult{{ProjectID: "p-2", Error: "only pending projects can be reviewed"}},
	}}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPost, "/projects/bulk-review", `{"projectIds":["p-1","p-2"],"action":"approve"}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "rev-1", Role: models.RoleApprover})

	handler.BulkReview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"p-1", "p-2"}, service.lastBulk.ProjectIDs)
	assert.Equal(t, models.ReviewApprove, service.lastBulk.Action)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var result dto.BulkReviewResponse
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "p-2", result.Failed[0].ProjectID)
}

func TestProjectHandlerDeleteNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeProjectSrv{}
	handler := NewProjectHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodDelete, "/projects/p-1", "")
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleSubmitter})

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "p-1", service.lastID)
}

func TestProjectHandlerSetStatusForbiddenPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProjectHandler(&fakeProjectSrv{err: appErrors.ErrPermissionDenied})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = testRequest(http.MethodPut, "/projects/p-1/status", `{"status":"Obsolete","justification":"superseded"}`)
	c.Params = gin.Params{{Key: "id", Value: "p-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "rev-1", Role: models.RoleApprover})

	handler.SetStatus(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
