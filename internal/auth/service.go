package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

// ErrInvalidCredentials is returned for both unknown users and wrong
// passwords.
var ErrInvalidCredentials = apperr.InvalidCredentials("Invalid email or password.")

// UserRepository is the user data access needed to authenticate.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// UserAuthService checks credentials against stored users. It is shared by
// token and session login.
type UserAuthService struct {
	users  UserRepository
	hasher *PasswordHasher
	now    func() time.Time
	log    *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserAuthService(users UserRepository, hasher *PasswordHasher, now func() time.Time, log *zap.Logger) *UserAuthService {
	if now == nil {
		now = time.Now
	}
	return &UserAuthService{
		users:  users,
		hasher: hasher,
		now:    now,
		log:    log.Named("user_auth"),
	}
}

// Authenticate looks the user up by email and verifies the password. On
// success last_login is set to now and the updated user returned.
func (s *UserAuthService) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByEmail(ctx, username)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindEntityNotFound {
			return nil, fmt.Errorf("find user: %w", err)
		}
		// Burn the same hashing time as a real check.
		s.hasher.Verify(password, s.dummy())
		s.log.Info("login for unknown user")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Info("login with wrong password", zap.String("user_uuid", user.UUID))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Info("login for inactive user", zap.String("user_uuid", user.UUID))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	return user, nil
}

func (s *UserAuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}
