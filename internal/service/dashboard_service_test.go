package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type statsProjectStub struct {
	byStatus map[string]int
	reviewed int
	avgHours float64
	calls    int
}

func (s *statsProjectStub) CountByStatus(ctx context.Context, submittedBy string) (map[string]int, error) {
	s.calls++
	return s.byStatus, nil
}

func (s *statsProjectStub) CountReviewedSince(ctx context.Context, since time.Time) (int, error) {
	return s.reviewed, nil
}

func (s *statsProjectStub) AvgReviewHours(ctx context.Context) (float64, error) {
	return s.avgHours, nil
}

type statsDrawingStub struct{ total int }

func (s *statsDrawingStub) CountAll(ctx context.Context, submittedBy string) (int, error) {
	return s.total, nil
}

type statsUserStub struct{ active int }

func (s *statsUserStub) CountActive(ctx context.Context) (int, error) {
	return s.active, nil
}

type cacheStub struct {
	entries map[string][]byte
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string][]byte)}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func TestDashboardServiceUserStats(t *testing.T) {
	projects := &statsProjectStub{byStatus: map[string]int{
		"Draft":             2,
		"Pending_Approval":  1,
		"Approved_Endorsed": 3,
	}}
	svc := NewDashboardService(projects, &statsDrawingStub{total: 14}, &statsUserStub{}, newCacheStub(), time.Minute, nil)

	stats, err := svc.UserStats(context.Background(), claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalProjects)
	assert.Equal(t, 14, stats.TotalDrawings)
	assert.Equal(t, 1, stats.PendingReview)
}

func TestDashboardServiceUserStatsCached(t *testing.T) {
	projects := &statsProjectStub{byStatus: map[string]int{"Draft": 1}}
	cache := newCacheStub()
	svc := NewDashboardService(projects, &statsDrawingStub{}, &statsUserStub{}, cache, time.Minute, nil)

	_, err := svc.UserStats(context.Background(), claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)
	_, err = svc.UserStats(context.Background(), claims("owner-1", models.RoleSubmitter))
	require.NoError(t, err)

	// second call is served from the cache
	assert.Equal(t, 1, projects.calls)
	assert.Contains(t, cache.entries, "dashboard:user:owner-1")
}

func TestDashboardServiceAdminStats(t *testing.T) {
	projects := &statsProjectStub{
		byStatus: map[string]int{"Pending_Approval": 4, "Approved_Endorsed": 10},
		reviewed: 7,
		avgHours: 36.5,
	}
	svc := NewDashboardService(projects, &statsDrawingStub{total: 80}, &statsUserStub{active: 12}, nil, time.Minute, nil)

	stats, err := svc.AdminStats(context.Background(), claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, 14, stats.TotalProjects)
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 7, stats.ReviewedThisMonth)
	assert.InDelta(t, 36.5, stats.AvgReviewHours, 0.001)
}

func TestDashboardServiceAdminStatsRestricted(t *testing.T) {
	svc := NewDashboardService(&statsProjectStub{}, &statsDrawingStub{}, &statsUserStub{}, nil, time.Minute, nil)

	_, err := svc.AdminStats(context.Background(), claims("sub-1", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)
}
