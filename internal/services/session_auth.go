package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entities"
)

// SessionAuthService implements cookie login and logout.
type SessionAuthService struct {
	authenticator *auth.UserAuthService
	sessions      *auth.LoginSessionService
	store         auth.SessionStore
	cookie        config.SessionCookieConfig
	log           *zap.Logger
}

func NewSessionAuthService(
	authenticator *auth.UserAuthService,
	sessions *auth.LoginSessionService,
	store auth.SessionStore,
	cookie config.SessionCookieConfig,
	log *zap.Logger,
) *SessionAuthService {
	return &SessionAuthService{
		authenticator: authenticator,
		sessions:      sessions,
		store:         store,
		cookie:        cookie,
		log:           log.Named("session_auth"),
	}
}

// Login checks the credentials, stores a new session and returns the
// cookie carrying its id.
func (s *SessionAuthService) Login(ctx context.Context, req LoginRequest) (*SessionCookie, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.CreateSession(user.UUID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Add(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("session login", zap.String("user_uuid", user.UUID))
	return &SessionCookie{SessionCookieConfig: s.cookie, Value: session.ID}, nil
}

// Logout deletes the session. It never fails for a missing session.
func (s *SessionAuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Logout(ctx, sessionID)
}

// Verify projects the session attached by the request gate.
func (s *SessionAuthService) Verify(session *entities.LoginSession) SessionRead {
	return sessionToRead(session)
}

// CookieConfig returns the descriptor used for login and logout cookies.
func (s *SessionAuthService) CookieConfig() config.SessionCookieConfig {
	return s.cookie
}
