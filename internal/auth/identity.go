package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entities"
)

// ContextKeyIdentity is the gin context key holding the *Identity.
const ContextKeyIdentity = "auth_identity"

// Identity is what an authorizer attaches to an authenticated request.
// Exactly one of Payload and Session is set, depending on Method.
type Identity struct {
	UserID  string // user UUID
	Method  config.AuthMethod
	Payload *Payload
	Session *entities.LoginSession
}

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(*Identity)
	return id, ok && id != nil
}

// SetIdentity attaches id to both the gin context and the request context.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(ContextKeyIdentity, id)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
}

func errNotAuthenticated() error {
	return apperr.Unauthorized("Unauthorized")
}

// CurrentIdentity returns the identity attached by the middleware, or an
// Unauthorized error when the request never passed through it.
func CurrentIdentity(c *gin.Context) (*Identity, error) {
	if v, exists := c.Get(ContextKeyIdentity); exists {
		if id, ok := v.(*Identity); ok && id != nil {
			return id, nil
		}
	}
	return nil, errNotAuthenticated()
}

// CurrentUserID returns the authenticated user's UUID.
func CurrentUserID(c *gin.Context) (string, error) {
	id, err := CurrentIdentity(c)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

// CurrentPayload returns the verified token payload of a bearer request.
func CurrentPayload(c *gin.Context) (*Payload, error) {
	id, err := CurrentIdentity(c)
	if err != nil {
		return nil, err
	}
	if id.Payload == nil {
		return nil, errNotAuthenticated()
	}
	return id.Payload, nil
}

// CurrentSession returns the login session of a cookie request.
func CurrentSession(c *gin.Context) (*entities.LoginSession, error) {
	id, err := CurrentIdentity(c)
	if err != nil {
		return nil, err
	}
	if id.Session == nil {
		return nil, errNotAuthenticated()
	}
	return id.Session, nil
}
