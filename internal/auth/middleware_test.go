package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/httperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthorizer accepts requests whose X-Test-User header is set.
type stubAuthorizer struct {
	calls int
}

func (s *stubAuthorizer) Authorize(r *http.Request) (*Identity, error) {
	s.calls++
	user := r.Header.Get("X-Test-User")
	if user == "" {
		return nil, apperr.Unauthorized("Invalid or missing token.")
	}
	return &Identity{UserID: user, Method: config.AuthMethodBearerAccessToken, Payload: &Payload{Subject: user}}, nil
}

func setupMiddlewareRouter(t *testing.T, authorizer Authorizer, excluded []string) *gin.Engine {
	t.Helper()
	m, err := NewMiddleware(authorizer, excluded, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Handler())
	handler := func(c *gin.Context) {
		userID, err := CurrentUserID(c)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		fromCtx, _ := IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": userID, "ctx_user": fromCtx.UserID})
	}
	r.GET("/api/health-check", handler)
	r.GET("/api/v1/sample-items/:id", handler)
	r.GET("/api/v1/auth/token/me", handler)
	return r
}

func TestMiddleware_ExcludedPathPassesWithoutCredentials(t *testing.T) {
	authorizer := &stubAuthorizer{}
	r := setupMiddlewareRouter(t, authorizer, DefaultExcludedPaths)

	for _, path := range []string{"/api/health-check", "/api/v1/sample-items/42"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Zero(t, authorizer.calls)
}

func TestMiddleware_RejectsProtectedPath(t *testing.T) {
	r := setupMiddlewareRouter(t, &stubAuthorizer{}, DefaultExcludedPaths)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/token/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Detail, 1)
	assert.Equal(t, "Unauthorized", body.Detail[0].Type)
	assert.Equal(t, "Invalid or missing token.", body.Detail[0].Msg)
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	r := setupMiddlewareRouter(t, &stubAuthorizer{}, DefaultExcludedPaths)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/token/me", nil)
	req.Header.Set("X-Test-User", "user-uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"user-uuid","ctx_user":"user-uuid"}`, w.Body.String())
}

func TestMiddleware_IsExcluded(t *testing.T) {
	m, err := NewMiddleware(&stubAuthorizer{}, append(DefaultExcludedPaths, "/static/*/file.css/"), zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		path     string
		excluded bool
	}{
		{"/api/health-check", true},
		{"/api/health-check/", true},
		{"/docs", true},
		{"/api/v1/sample-items", true},
		{"/api/v1/sample-items/", true},
		{"/api/v1/sample-items/1/logical", true},
		{"/api/v1/sample-items-by-uuid/abc", true},
		{"/static/css/file.css", true},
		{"/api/v1/auth/token/token", true},
		{"/api/v1/auth/token/token/", true},
		{"/api/v1/auth/token/me", false},
		{"/api/v1/auth/token/verify", false},
		{"/api/v1/auth/session/verify", false},
		{"/api/v1/admin/users", false},
		{"/api/health-check-extra", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.excluded, m.IsExcluded(tt.path))
		})
	}
}

func TestIdentityAccessors_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := CurrentIdentity(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = CurrentUserID(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = CurrentPayload(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = CurrentSession(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, ok := IdentityFromContext(c.Request.Context())
	assert.False(t, ok)
}

func TestIdentityAccessors_WrongScheme(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	SetIdentity(c, &Identity{UserID: "u", Method: config.AuthMethodBearerAccessToken, Payload: &Payload{Subject: "u"}})

	p, err := CurrentPayload(c)
	require.NoError(t, err)
	assert.Equal(t, "u", p.Subject)

	_, err = CurrentSession(c)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestSetIdentity_StoresOnlyIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	SetIdentity(c, &Identity{UserID: "user-uuid", Method: config.AuthMethodSessionCookie})

	assert.Len(t, c.Keys, 1)
	assert.Contains(t, c.Keys, ContextKeyIdentity)

	userID, err := CurrentUserID(c)
	require.NoError(t, err)
	assert.Equal(t, "user-uuid", userID)

	id, ok := IdentityFromContext(c.Request.Context())
	require.True(t, ok)
	assert.Equal(t, "user-uuid", id.UserID)
}
