package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/docuhub/docuhub-api/internal/dto"
	"github.com/docuhub/docuhub-api/internal/models"
	appErrors "github.com/docuhub/docuhub-api/pkg/errors"
)

type userStoreStub struct {
	users   map[string]*models.User
	revoked []string
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]*models.User)}
}

func (s *userStoreStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	result := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		result = append(result, *user)
	}
	return result, len(result), nil
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	return nil
}

func (s *userStoreStub) Update(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	s.users[user.ID] = user
	return nil
}

func (s *userStoreStub) Deactivate(ctx context.Context, id string) error {
	user, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.Active = false
	return nil
}

func (s *userStoreStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func seedAccount(store *userStoreStub, role models.UserRole) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: string(hash),
		FullName:     "Account Holder",
		Role:         role,
		Active:       true,
	}
	store.users[user.ID] = user
	return user
}

func TestUserServiceCreate(t *testing.T) {
	store := newUserStoreStub()
	svc := NewUserService(store, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "New.Drafter@Example.com",
		Password: "secret123",
		FullName: "New Drafter",
		Role:     "submitter",
	}, claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, "new.drafter@example.com", created.Email)
	assert.Equal(t, models.RoleSubmitter, created.Role)
	assert.True(t, created.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	store := newUserStoreStub()
	existing := seedAccount(store, models.RoleSubmitter)
	svc := NewUserService(store, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    existing.Email,
		Password: "secret123",
		FullName: "Duplicate",
		Role:     models.RoleViewer,
	}, claims("admin-1", models.RoleAdmin))
	requireAppError(t, err, appErrors.ErrConflict.Code)
}

func TestUserServiceAdminOnly(t *testing.T) {
	store := newUserStoreStub()
	svc := NewUserService(store, nil, nil)

	_, _, err := svc.List(context.Background(), models.UserFilter{}, claims("apr-1", models.RoleApprover))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	_, err = svc.Create(context.Background(), dto.CreateUserRequest{
		Email: "x@example.com", Password: "secret123", FullName: "X", Role: models.RoleViewer,
	}, claims("sub-1", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)
}

func TestUserServiceGetSelfOrAdmin(t *testing.T) {
	store := newUserStoreStub()
	user := seedAccount(store, models.RoleSubmitter)
	svc := NewUserService(store, nil, nil)

	_, err := svc.Get(context.Background(), user.ID, claims(user.ID, models.RoleSubmitter))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), user.ID, claims("other", models.RoleSubmitter))
	requireAppError(t, err, appErrors.ErrPermissionDenied.Code)

	_, err = svc.Get(context.Background(), user.ID, claims("admin-1", models.RoleAdmin))
	require.NoError(t, err)
}

func TestUserServiceDeactivateGuardsSelf(t *testing.T) {
	store := newUserStoreStub()
	admin := seedAccount(store, models.RoleAdmin)
	target := seedAccount(store, models.RoleSubmitter)
	svc := NewUserService(store, nil, nil)

	err := svc.Deactivate(context.Background(), admin.ID, claims(admin.ID, models.RoleAdmin))
	requireAppError(t, err, appErrors.ErrInvalidState.Code)

	require.NoError(t, svc.Deactivate(context.Background(), target.ID, claims(admin.ID, models.RoleAdmin)))
	assert.False(t, store.users[target.ID].Active)
	assert.Contains(t, store.revoked, target.ID)
}

func TestUserServiceUpdateDemotionGuard(t *testing.T) {
	store := newUserStoreStub()
	admin := seedAccount(store, models.RoleAdmin)
	svc := NewUserService(store, nil, nil)

	viewer := models.RoleViewer
	_, err := svc.Update(context.Background(), admin.ID, dto.UpdateUserRequest{Role: &viewer}, claims(admin.ID, models.RoleAdmin))
	requireAppError(t, err, appErrors.ErrInvalidState.Code)
}
