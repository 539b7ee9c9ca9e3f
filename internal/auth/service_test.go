package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

func newTestUser(t *testing.T, hasher *PasswordHasher, email, password string) *entities.User {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return &entities.User{
		ID:           1,
		UUID:         "0b6f5a2e-8f0c-4a43-9a55-6d1f8b2c1e01",
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
}

func TestUserAuthService_Authenticate(t *testing.T) {
	hasher := NewPasswordHasher(HasherBcrypt, 4)
	user := newTestUser(t, hasher, "admin@fawapp.com", "password")
	repo := newMemoryUserRepo(user)
	svc := NewUserAuthService(repo, hasher, fixedClock(frozenNow), zap.NewNop())

	got, err := svc.Authenticate(context.Background(), "admin@fawapp.com", "password")
	require.NoError(t, err)

	assert.Equal(t, user.UUID, got.UUID)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, frozenNow, *got.LastLogin)
	assert.Equal(t, frozenNow, repo.lastLoginAt[user.ID])
}

func TestUserAuthService_AuthenticateRejects(t *testing.T) {
	hasher := NewPasswordHasher(HasherBcrypt, 4)
	active := newTestUser(t, hasher, "admin@fawapp.com", "password")
	inactive := newTestUser(t, hasher, "gone@fawapp.com", "password")
	inactive.ID = 2
	inactive.IsActive = false
	repo := newMemoryUserRepo(active, inactive)
	svc := NewUserAuthService(repo, hasher, fixedClock(frozenNow), zap.NewNop())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "nobody@fawapp.com", "password"},
		{"wrong password", "admin@fawapp.com", "wrong"},
		{"inactive user", "gone@fawapp.com", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.email, tt.password)

			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrInvalidCredentials))
			assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(err))
		})
	}
	assert.Empty(t, repo.lastLoginAt)
}

type failingUserRepo struct{}

func (failingUserRepo) GetByEmail(context.Context, string) (*entities.User, error) {
	return nil, errors.New("database is locked")
}

func (failingUserRepo) UpdateLastLogin(context.Context, uint, time.Time) error { return nil }

func TestUserAuthService_RepositoryError(t *testing.T) {
	svc := NewUserAuthService(failingUserRepo{}, NewPasswordHasher(HasherBcrypt, 4), nil, zap.NewNop())

	_, err := svc.Authenticate(context.Background(), "admin@fawapp.com", "password")

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
