package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type statsProjectRepository interface {
	CountByStatus(ctx context.Context, submittedBy string) (map[string]int, error)
	CountReviewedSince(ctx context.Context, since time.Time) (int, error)
	AvgReviewHours(ctx context.Context) (float64, error)
}

type statsDrawingRepository interface {
	CountAll(ctx context.Context, submittedBy string) (int, error)
}

type statsUserRepository interface {
	CountActive(ctx context.Context) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService aggregates workflow figures, cached in Redis so repeated
// dashboard loads do not hammer Postgres.
type DashboardService struct {
	projects statsProjectRepository
	drawings statsDrawingRepository
	users    statsUserRepository
	cache    dashboardCache
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(projects statsProjectRepository, drawings statsDrawingRepository, users statsUserRepository, cache dashboardCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		projects: projects,
		drawings: drawings,
		users:    users,
		cache:    cache,
		logger:   logger,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UserStats returns the actor's own submission figures.
func (s *DashboardService) UserStats(ctx context.Context, actor *models.JWTClaims) (*dto.UserStatsResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	key := fmt.Sprintf("dashboard:user:%s", actor.UserID)
	var cached dto.UserStatsResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	byStatus, err := s.projects.CountByStatus(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate project counts")
	}
	drawings, err := s.drawings.CountAll(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count drawings")
	}

	stats := &dto.UserStatsResponse{
		UserID:        actor.UserID,
		ByStatus:      byStatus,
		TotalDrawings: drawings,
		PendingReview: byStatus[string(models.StatusPendingApproval)],
	}
	for _, count := range byStatus {
		stats.TotalProjects += count
	}
	s.cacheSet(ctx, key, stats)
	return stats, nil
}

// AdminStats returns system-wide workflow figures. Reviewers only.
func (s *DashboardService) AdminStats(ctx context.Context, actor *models.JWTClaims) (*dto.AdminStatsResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsReviewer() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "admin dashboard is restricted to reviewers")
	}
	const key = "dashboard:admin"
	var cached dto.AdminStatsResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	byStatus, err := s.projects.CountByStatus(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate project counts")
	}
	drawings, err := s.drawings.CountAll(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count drawings")
	}
	users, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	reviewed, err := s.projects.CountReviewedSince(ctx, monthStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reviewed projects")
	}
	avgHours, err := s.projects.AvgReviewHours(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute review turnaround")
	}

	stats := &dto.AdminStatsResponse{
		ByStatus:          byStatus,
		TotalDrawings:     drawings,
		TotalUsers:        users,
		PendingReview:     byStatus[string(models.StatusPendingApproval)],
		ReviewedThisMonth: reviewed,
		AvgReviewHours:    avgHours,
	}
	for _, count := range byStatus {
		stats.TotalProjects += count
	}
	s.cacheSet(ctx, key, stats)
	return stats, nil
}

func (s *DashboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
