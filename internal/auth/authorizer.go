package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
)

// Authorizer turns a request into an identity or rejects it with an
// Unauthorized error.
type Authorizer interface {
	Authorize(r *http.Request) (*Identity, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerTokenAuthorizer verifies a JWT from the Authorization header.
type BearerTokenAuthorizer struct {
	codec *TokenCodec
	log   *zap.Logger
}

func NewBearerTokenAuthorizer(codec *TokenCodec, log *zap.Logger) *BearerTokenAuthorizer {
	return &BearerTokenAuthorizer{codec: codec, log: log.Named("bearer_authorizer")}
}

func (a *BearerTokenAuthorizer) Authorize(r *http.Request) (*Identity, error) {
	token, ok := BearerToken(r)
	if !ok {
		a.log.Warn("missing bearer token", zap.String("path", r.URL.Path))
		return nil, apperr.Unauthorized("Invalid or missing token.")
	}

	payload, err := a.codec.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:  payload.Subject,
		Method:  config.AuthMethodBearerAccessToken,
		Payload: payload,
	}, nil
}

// SessionCookieAuthorizer resolves the session cookie against the store.
type SessionCookieAuthorizer struct {
	cookieName string
	store      SessionStore
	now        func() time.Time
	log        *zap.Logger
}

func NewSessionCookieAuthorizer(cookieName string, store SessionStore, now func() time.Time, log *zap.Logger) *SessionCookieAuthorizer {
	if now == nil {
		now = time.Now
	}
	return &SessionCookieAuthorizer{
		cookieName: cookieName,
		store:      store,
		now:        now,
		log:        log.Named("session_authorizer"),
	}
}

func (a *SessionCookieAuthorizer) Authorize(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		a.log.Warn("missing session cookie", zap.String("path", r.URL.Path))
		return nil, apperr.Unauthorized("Invalid or missing session.")
	}

	session, err := a.store.GetByID(r.Context(), cookie.Value)
	if err != nil {
		a.log.Warn("session lookup failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.KindUnauthorized, "Invalid or missing session.", err)
	}
	if session.Expired(a.now()) {
		a.log.Info("expired session presented", zap.Time("expires_at", session.ExpiresAt))
		return nil, apperr.Unauthorized("Invalid or missing session.")
	}

	return &Identity{
		UserID:  session.UserUUID,
		Method:  config.AuthMethodSessionCookie,
		Session: session,
	}, nil
}

// NewAuthorizer selects the authorizer for the configured method.
func NewAuthorizer(method config.AuthMethod, codec *TokenCodec, store SessionStore, cookieName string, now func() time.Time, log *zap.Logger) (Authorizer, error) {
	switch method {
	case config.AuthMethodBearerAccessToken:
		return NewBearerTokenAuthorizer(codec, log), nil
	case config.AuthMethodSessionCookie:
		return NewSessionCookieAuthorizer(cookieName, store, now, log), nil
	default:
		return nil, fmt.Errorf("unknown auth method %q", method)
	}
}
