package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware adds security headers to all responses. The
// service only serves JSON, so the content policy forbids everything.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")

		// HSTS only makes sense over HTTPS
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// CORSMiddleware allows credentialed requests from the listed origins.
// With no origins configured it adds nothing. A "*" entry allows any
// origin but then credentials are never allowed.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(o, "/")
		if o == "*" {
			wildcard = true
			continue
		}
		allowed = append(allowed, o)
	}

	if !wildcard && len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cfg := cors.Config{
		AllowOrigins: allowed,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			CSRFTokenHeader,
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !wildcard,
		MaxAge:           12 * time.Hour,
	}
	if wildcard {
		cfg.AllowAllOrigins = true
		cfg.AllowOrigins = nil
	}
	return cors.New(cfg)
}
