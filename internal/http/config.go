package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Config *config.Config
	Logger *zap.Logger
	Now    func() time.Time

	// Request gate and per-route permission checks
	AuthMiddleware  *auth.Middleware
	PermissionGuard *auth.PermissionGuard

	// CSRFSecret enables CSRF protection for cookie-authenticated requests
	// when non-empty.
	CSRFSecret []byte

	TokenAuth   *services.TokenAuthService
	SessionAuth *services.SessionAuthService
	Users       *services.UserService
	SampleItems *services.SampleItemService

	// Database is pinged by the health check; nil reports "not configured".
	Database Pinger

	// Application info
	Version string
}
