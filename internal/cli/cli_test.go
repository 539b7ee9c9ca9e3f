package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/database"
	"github.com/mrlokans/crudgate/internal/database/loginsessions"
	"github.com/mrlokans/crudgate/internal/database/users"
	"github.com/mrlokans/crudgate/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "cli.db")
	cfg.Auth.BcryptCost = 4
	return cfg
}

func TestCreateUserCommand_ParseFlags(t *testing.T) {
	cfg := testConfig(t)

	cmd := NewCreateUserCommand(cfg, zap.NewNop())
	require.NoError(t, cmd.ParseFlags([]string{"-email", "a@b.co", "-password", "pw", "-superuser"}))
	assert.Equal(t, "a@b.co", cmd.Email)
	assert.True(t, cmd.Superuser)
	assert.Equal(t, entities.RoleUser, cmd.Role)
	assert.Equal(t, cfg.Database.Path, cmd.DatabasePath)

	assert.Error(t, NewCreateUserCommand(cfg, zap.NewNop()).ParseFlags([]string{"-password", "pw"}))
	assert.Error(t, NewCreateUserCommand(cfg, zap.NewNop()).ParseFlags([]string{"-email", "a@b.co"}))
}

func TestCreateUserCommand_Run(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	cmd := NewCreateUserCommand(cfg, zap.NewNop())
	var out bytes.Buffer
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-email", "admin@fawapp.com", "-password", "test123", "-role", "admin"}))
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "admin@fawapp.com")

	db, err := database.NewDatabase(cfg.Database, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	user, err := users.NewRepository(db.DB, zap.NewNop()).GetByEmail(ctx, "admin@fawapp.com")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "test123", user.PasswordHash)

	again := NewCreateUserCommand(cfg, zap.NewNop())
	again.out = &out
	require.NoError(t, again.ParseFlags([]string{"-email", "admin@fawapp.com", "-password", "test123"}))
	err = again.Run(ctx)
	assert.Equal(t, apperr.KindEntityAlreadyExists, apperr.KindOf(err))
}

func TestPurgeSessionsCommand_Run(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	db, err := database.NewDatabase(cfg.Database, zap.NewNop())
	require.NoError(t, err)
	repo := loginsessions.NewRepository(db.DB)
	now := time.Now().UTC()
	require.NoError(t, repo.Add(ctx, &entities.LoginSession{ID: "old", UserUUID: "u", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Add(ctx, &entities.LoginSession{ID: "live", UserUUID: "u", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, db.Close())

	cmd := NewPurgeSessionsCommand(cfg, zap.NewNop())
	var out bytes.Buffer
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "Removed 1 expired sessions")
}
