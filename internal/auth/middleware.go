package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/httperr"
)

// DefaultExcludedPaths are served without authentication.
var DefaultExcludedPaths = []string{
	"/docs",
	"/redoc",
	"/openapi.json",
	"/api/health-check",
	"/api/v1/auth/token/token",
	"/api/v1/auth/token/token/refresh",
	"/api/v1/auth/token/token/explicit-authorize/me",
	"/api/v1/auth/session/login",
	"/api/v1/auth/session/logout",
	"/api/v1/sample-items",
	"/api/v1/sample-items/*",
	"/api/v1/sample-items-by-uuid",
	"/api/v1/sample-items-by-uuid/*",
}

// Middleware is the request gate: every request that does not match an
// excluded pattern must pass the configured authorizer.
type Middleware struct {
	authorizer Authorizer
	excluded   []glob.Glob
	log        *zap.Logger
}

// NewMiddleware compiles the exclusion patterns. Patterns use shell glob
// syntax where "*" also matches "/".
func NewMiddleware(authorizer Authorizer, excludedPaths []string, log *zap.Logger) (*Middleware, error) {
	excluded := make([]glob.Glob, 0, len(excludedPaths))
	for _, pattern := range excludedPaths {
		g, err := glob.Compile(normalizePath(pattern))
		if err != nil {
			return nil, fmt.Errorf("compile excluded path %q: %w", pattern, err)
		}
		excluded = append(excluded, g)
	}

	return &Middleware{
		authorizer: authorizer,
		excluded:   excluded,
		log:        log.Named("auth_middleware"),
	}, nil
}

// Handler returns the gin middleware.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.IsExcluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		identity, err := m.authorizer.Authorize(c.Request)
		if err != nil {
			m.log.Debug("request rejected",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			httperr.Abort(c, err)
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// IsExcluded reports whether path bypasses authorization. Trailing slashes
// are ignored on both sides.
func (m *Middleware) IsExcluded(path string) bool {
	path = normalizePath(path)
	for _, g := range m.excluded {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
