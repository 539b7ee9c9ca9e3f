package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func newCORSRouter(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(origins))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "X-CSRF-Token")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware(t *testing.T) {
	r := newCORSRouter([]string{"http://localhost:3000/"})

	w := corsRequest(r, http.MethodGet, "http://localhost:3000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRequest(r, http.MethodGet, "http://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRequest(r, http.MethodOptions, "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
	allowHeaders := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowHeaders, "authorization")
	assert.Contains(t, allowHeaders, "x-csrf-token")
}

func TestCORSMiddleware_WildcardNeverAllowsCredentials(t *testing.T) {
	r := newCORSRouter([]string{"*"})

	w := corsRequest(r, http.MethodGet, "https://evil.example")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, "https://evil.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSMiddleware_NoOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func setupCSRFRouter() *gin.Engine {
	secret := []byte(strings.Repeat("k", 32))
	r := gin.New()
	r.Use(CSRFMiddleware(secret, false, []string{"/login"}, zap.NewNop()))
	r.GET("/csrf", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
	})
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/action", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCSRFMiddleware(t *testing.T) {
	r := setupCSRFRouter()

	t.Run("safe method issues token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), `"csrf_token":""`)
	})

	t.Run("post without token is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/action", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "CSRF token invalid or missing")
	})

	t.Run("exempt path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bearer requests skip the check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/action", nil)
		req.Header.Set("Authorization", "Bearer anything")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
