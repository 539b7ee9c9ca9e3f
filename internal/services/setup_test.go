package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

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
)

// frozenNow is 2025-01-02T00:00:00Z.
var frozenNow = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *database.Database
	users    *users.Repository
	sessions *loginsessions.Repository
	items    *sampleitems.Repository
	hasher   *auth.PasswordHasher
	authn    *auth.UserAuthService
	factory  *auth.PayloadFactory
	codec    *auth.TokenCodec
	cfg      *config.Config
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	clock := func() time.Time { return now }

	cfg := config.NewConfig()
	cfg.Auth.TokenSecret = "test-secret"
	cfg.Auth.BcryptCost = 4

	db, err := database.NewDatabase(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "services.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	codec, err := auth.NewTokenCodec(cfg.Auth, clock, zap.NewNop())
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	usersRepo := users.NewRepository(db.DB, zap.NewNop())

	return &testEnv{
		db:       db,
		users:    usersRepo,
		sessions: loginsessions.NewRepository(db.DB),
		items:    sampleitems.NewRepository(db.DB, zap.NewNop()),
		hasher:   hasher,
		authn:    auth.NewUserAuthService(usersRepo, hasher, clock, zap.NewNop()),
		factory:  auth.NewPayloadFactory(cfg.Auth, clock),
		codec:    codec,
		cfg:      cfg,
	}
}

func (e *testEnv) createUser(t *testing.T, email, password string, roles ...string) *entities.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	user := &entities.User{
		UUID:         uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, e.users.Create(context.Background(), user, roles...))
	return user
}
