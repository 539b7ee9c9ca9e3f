package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/database"
	"github.com/mrlokans/crudgate/internal/database/loginsessions"
	"github.com/mrlokans/crudgate/internal/database/sampleitems"
	"github.com/mrlokans/crudgate/internal/database/users"
	"github.com/mrlokans/crudgate/internal/entities"
	"github.com/mrlokans/crudgate/internal/httperr"
	"github.com/mrlokans/crudgate/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// frozenNow is 2025-01-02T00:00:00Z.
var frozenNow = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	db       *database.Database
	users    *users.Repository
	sessions *loginsessions.Repository
	hasher   *auth.PasswordHasher
	cfg      *config.Config
}

type serverOption func(cfg *config.Config)

func withCSRF(cfg *config.Config) { cfg.Auth.CSRFEnabled = true }

func newTestServer(t *testing.T, method config.AuthMethod, now time.Time, opts ...serverOption) *testServer {
	t.Helper()
	clock := func() time.Time { return now }
	log := zap.NewNop()

	cfg := config.NewConfig()
	cfg.Auth.Method = method
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Session.CookieSecure = false
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := database.NewDatabase(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "http.db"),
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	codec, err := auth.NewTokenCodec(cfg.Auth, clock, log)
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	usersRepo := users.NewRepository(db.DB, log)
	sessionsRepo := loginsessions.NewRepository(db.DB)
	authn := auth.NewUserAuthService(usersRepo, hasher, clock, log)
	loginSessions := auth.NewLoginSessionService(sessionsRepo, cfg.Session.Lifetime(), clock, log)

	authorizer, err := auth.NewAuthorizer(cfg.Auth.Method, codec, sessionsRepo, cfg.Session.CookieName, clock, log)
	require.NoError(t, err)
	middleware, err := auth.NewMiddleware(authorizer, auth.DefaultExcludedPaths, log)
	require.NoError(t, err)

	rc := RouterConfig{
		Config:          cfg,
		Logger:          log,
		Now:             clock,
		AuthMiddleware:  middleware,
		PermissionGuard: auth.NewPermissionGuard(usersRepo, log),
		TokenAuth:       services.NewTokenAuthService(authn, usersRepo, auth.NewPayloadFactory(cfg.Auth, clock), codec, log),
		SessionAuth:     services.NewSessionAuthService(authn, loginSessions, sessionsRepo, cfg.Session.CookieConfig(), log),
		Users:           services.NewUserService(usersRepo, hasher, log),
		SampleItems:     services.NewSampleItemService(sampleitems.NewRepository(db.DB, log), log),
		Database:        db,
		Version:         "test",
	}
	if cfg.Auth.CSRFEnabled {
		rc.CSRFSecret = []byte("0123456789abcdef0123456789abcdef")
	}

	return &testServer{
		router:   NewRouter(rc),
		db:       db,
		users:    usersRepo,
		sessions: sessionsRepo,
		hasher:   hasher,
		cfg:      cfg,
	}
}

func (s *testServer) createUser(t *testing.T, email, password string, superuser bool, roles ...string) *entities.User {
	t.Helper()
	hash, err := s.hasher.Hash(password)
	require.NoError(t, err)
	user := &entities.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  superuser,
	}
	require.NoError(t, s.users.Create(context.Background(), user, roles...))
	return user
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[httperr.ErrorResponse](t, w)
	require.NotEmpty(t, body.Detail)
	return body.Detail[0].Type
}
