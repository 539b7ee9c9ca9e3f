package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/entities"
)

// SessionStore persists login sessions. GetByID returns an
// apperr EntityNotFound error for unknown or soft-deleted ids; Delete of an
// unknown id is not an error.
type SessionStore interface {
	Add(ctx context.Context, session *entities.LoginSession) error
	GetByID(ctx context.Context, id string) (*entities.LoginSession, error)
	Delete(ctx context.Context, id string) error
}

// LoginSessionService creates and ends cookie sessions.
//
// Session ids are opaque random reference tokens: nothing about the user is
// encoded in the cookie, and every request resolves the id in the store.
type LoginSessionService struct {
	store    SessionStore
	lifetime time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewLoginSessionService(store SessionStore, lifetime time.Duration, now func() time.Time, log *zap.Logger) *LoginSessionService {
	if now == nil {
		now = time.Now
	}
	return &LoginSessionService{
		store:    store,
		lifetime: lifetime,
		now:      now,
		log:      log.Named("login_session"),
	}
}

// CreateSession builds an unsaved session for userUUID expiring at
// now + lifetime (UTC).
func (s *LoginSessionService) CreateSession(userUUID string) (*entities.LoginSession, error) {
	id, err := NewSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return &entities.LoginSession{
		ID:        id,
		UserUUID:  userUUID,
		ExpiresAt: s.now().UTC().Add(s.lifetime),
	}, nil
}

// Logout deletes the session. A missing id is not an error.
func (s *LoginSessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		s.log.Warn("logout without a session id")
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
