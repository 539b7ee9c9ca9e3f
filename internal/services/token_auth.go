package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/auth"
)

const msgInvalidRefreshToken = "Invalid refresh token."

// TokenAuthService implements the bearer-token flows: login, refresh and
// reading the current user.
type TokenAuthService struct {
	authenticator *auth.UserAuthService
	users         UserStore
	factory       *auth.PayloadFactory
	codec         *auth.TokenCodec
	log           *zap.Logger
}

func NewTokenAuthService(
	authenticator *auth.UserAuthService,
	users UserStore,
	factory *auth.PayloadFactory,
	codec *auth.TokenCodec,
	log *zap.Logger,
) *TokenAuthService {
	return &TokenAuthService{
		authenticator: authenticator,
		users:         users,
		factory:       factory,
		codec:         codec,
		log:           log.Named("token_auth"),
	}
}

// Login checks the credentials and issues an access and refresh token.
func (s *TokenAuthService) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	access, err := s.codec.CreateToken(s.factory.Create(auth.PayloadParams{
		Subject: user.UUID,
		Email:   user.Email,
	}))
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.codec.CreateToken(s.factory.Create(auth.PayloadParams{
		Subject:        user.UUID,
		Email:          user.Email,
		IsRefreshToken: true,
	}))
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	return &auth.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    auth.TokenTypeBearer,
	}, nil
}

// Refresh issues a new access token for a valid refresh token. The refresh
// token itself is returned unchanged.
func (s *TokenAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.Token, error) {
	payload, err := s.codec.VerifyToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !payload.IsRefreshToken {
		s.log.Warn("access token presented for refresh", zap.String("sub", payload.Subject))
		return nil, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	user, err := s.users.GetByUUID(ctx, payload.Subject)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindEntityNotFound {
			s.log.Warn("refresh for unknown user", zap.String("sub", payload.Subject))
			return nil, apperr.Unauthorized(msgInvalidRefreshToken)
		}
		return nil, err
	}
	if !user.IsActive {
		s.log.Warn("refresh for inactive user", zap.String("sub", payload.Subject))
		return nil, apperr.Unauthorized(msgInvalidRefreshToken)
	}

	access, err := s.codec.CreateToken(s.factory.Create(auth.PayloadParams{
		Subject: user.UUID,
		Email:   user.Email,
	}))
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &auth.Token{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    auth.TokenTypeBearer,
	}, nil
}

// Me returns the user an access token was issued to. Refresh tokens are
// rejected even though they verify.
func (s *TokenAuthService) Me(ctx context.Context, payload *auth.Payload) (*UserRead, error) {
	if payload.IsRefreshToken {
		s.log.Warn("refresh token presented as access token", zap.String("sub", payload.Subject))
		return nil, apperr.Unauthorized("Invalid access token.")
	}

	user, err := s.users.GetByUUID(ctx, payload.Subject)
	if err != nil {
		return nil, err
	}
	read := userToRead(user)
	return &read, nil
}

// ExplicitMe verifies rawToken itself instead of relying on the request
// gate, then behaves like Me.
func (s *TokenAuthService) ExplicitMe(ctx context.Context, rawToken string) (*UserRead, error) {
	payload, err := s.codec.VerifyToken(rawToken)
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, payload)
}
