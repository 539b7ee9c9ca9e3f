package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/entities"
	"github.com/mrlokans/crudgate/internal/httperr"
)

const (
	pathHealthCheck    = "/api/health-check"
	pathTokenGroup     = "/api/v1/auth/token"
	pathSessionGroup   = "/api/v1/auth/session"
	pathSessionLogin   = pathSessionGroup + "/login"
	pathSessionLogout  = pathSessionGroup + "/logout"
	pathAdminUsers     = "/api/v1/admin/users"
	pathSampleItems    = "/api/v1/sample-items"
	pathSampleItemUUID = "/api/v1/sample-items-by-uuid"
)

// NewRouter creates and configures the HTTP router with all endpoints.
//
// Middleware order matters: the error handler wraps everything so that
// aborts from the security middleware still render the JSON envelope, and
// CSRF runs before the request gate so a forged request is rejected before
// any session lookup.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(httperr.Handler(log))
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.CORSMiddleware(cfg.Config.HTTP.CORSOrigins))

	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(
			cfg.CSRFSecret,
			cfg.Config.Session.CookieSecure,
			[]string{pathSessionLogin},
			log,
		))
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperr.NotFound("Not Found"))
	})

	health := NewHealthController(cfg.Database, cfg.Version, now)
	router.GET(pathHealthCheck, health.Status)

	if cfg.TokenAuth != nil {
		tc := NewTokenAuthController(cfg.TokenAuth)
		token := router.Group(pathTokenGroup)
		{
			token.POST("/token", tc.Login)
			token.POST("/token/refresh", tc.Refresh)
			token.GET("/token/explicit-authorize/me", tc.ExplicitMe)
			token.GET("/verify", tc.Verify)
			token.GET("/me", tc.Me)
		}
	}

	if cfg.SessionAuth != nil {
		sc := NewSessionAuthController(cfg.SessionAuth)
		session := router.Group(pathSessionGroup)
		{
			session.POST("/login", sc.Login)
			session.POST("/logout", sc.Logout)
			session.GET("/verify", sc.Verify)
			if len(cfg.CSRFSecret) > 0 {
				session.GET("/csrf", sc.CSRF)
			}
		}
	}

	if cfg.Users != nil && cfg.PermissionGuard != nil {
		uc := NewAdminUsersController(cfg.Users)
		guard := cfg.PermissionGuard
		admin := router.Group(pathAdminUsers)
		{
			admin.GET("", guard.Require(entities.PermissionAdminRead), uc.List)
			admin.POST("", guard.Require(entities.PermissionAdminWrite), uc.Create)
			admin.GET("/:uuid", guard.Require(entities.PermissionAdminRead), uc.Get)
		}
	}

	if cfg.SampleItems != nil {
		ic := NewSampleItemsController(cfg.SampleItems)
		items := router.Group(pathSampleItems)
		{
			items.GET("", ic.List)
			items.POST("", ic.Create)
			items.GET("/:id", ic.Get)
			items.PATCH("/:id", ic.Update)
			items.PUT("/:id", ic.Update)
			items.DELETE("/:id", ic.Delete)
			items.DELETE("/:id/logical", ic.LogicalDelete)
		}
		router.GET(pathSampleItemUUID+"/:uuid", ic.GetByUUID)
	}

	return router
}
