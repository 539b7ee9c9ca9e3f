package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
	"github.com/mrlokans/crudgate/internal/httperr"
)

// PermissionLoader loads a user with roles and permissions preloaded.
type PermissionLoader interface {
	GetByUUIDWithPermissions(ctx context.Context, uuid string) (*entities.User, error)
}

// PermissionGuard checks named permissions after the request gate has
// attached an identity. It is applied per route.
type PermissionGuard struct {
	users PermissionLoader
	log   *zap.Logger
}

func NewPermissionGuard(users PermissionLoader, log *zap.Logger) *PermissionGuard {
	return &PermissionGuard{users: users, log: log.Named("permissions")}
}

// Require rejects the request with Forbidden unless the current user holds
// at least one of perms. Superusers always pass.
func (g *PermissionGuard) Require(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := CurrentUserID(c)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		if err := g.Permitted(c.Request.Context(), userID, perms); err != nil {
			httperr.Abort(c, err)
			return
		}
		c.Next()
	}
}

// Permitted returns nil when userUUID may act with any of perms.
func (g *PermissionGuard) Permitted(ctx context.Context, userUUID string, perms []string) error {
	user, err := g.users.GetByUUIDWithPermissions(ctx, userUUID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindEntityNotFound {
			g.log.Warn("permission check for unknown user", zap.String("user_uuid", userUUID))
			return apperr.Forbidden("Missing permission")
		}
		return err
	}

	if user.IsSuperuser || len(perms) == 0 {
		return nil
	}

	granted := user.PermissionNames()
	for _, p := range perms {
		if _, ok := granted[p]; ok {
			return nil
		}
	}

	g.log.Info("permission denied",
		zap.String("user_uuid", userUUID),
		zap.Strings("required", perms),
	)
	return apperr.Forbidden("Missing permission")
}
