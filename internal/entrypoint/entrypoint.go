package entrypoint

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/database"
	"github.com/mrlokans/crudgate/internal/database/loginsessions"
	"github.com/mrlokans/crudgate/internal/database/sampleitems"
	"github.com/mrlokans/crudgate/internal/database/users"
	http_controllers "github.com/mrlokans/crudgate/internal/http"
	"github.com/mrlokans/crudgate/internal/scheduler"
	"github.com/mrlokans/crudgate/internal/services"
	"github.com/mrlokans/crudgate/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired server and everything that must be released with it.
type App struct {
	Router *gin.Engine

	db        *database.Database
	purge     *services.SessionPurgeService
	taskQueue *tasks.Client
	cleanup   *scheduler.SessionCleanupScheduler
	log       *zap.Logger
}

// ensureTokenSecret fills in a random signing secret. Tokens signed with it
// stop verifying after a restart.
func ensureTokenSecret(cfg *config.Config, log *zap.Logger) error {
	if cfg.Auth.TokenSecret != "" {
		return nil
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("generate token secret: %w", err)
	}
	cfg.Auth.TokenSecret = secret
	log.Warn("AUTH_TOKEN_SECRET is not set, generated a random one; issued tokens will not survive a restart")
	return nil
}

// csrfKey derives the 32-byte gorilla/csrf key from the token secret.
func csrfKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

// NewApp wires repositories, services and the router. It does not start
// any background work.
func NewApp(cfg *config.Config, log *zap.Logger, version string) (*App, error) {
	if err := ensureTokenSecret(cfg, log); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	now := cfg.App.Clock()

	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sessions, err := loginsessions.NewBackend(cfg.Session.Backend, db.DB, now)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session backend: %w", err)
	}

	codec, err := auth.NewTokenCodec(cfg.Auth, now, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	usersRepo := users.NewRepository(db.DB, log)
	hasher := auth.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	authn := auth.NewUserAuthService(usersRepo, hasher, now, log)
	loginSessions := auth.NewLoginSessionService(sessions, cfg.Session.Lifetime(), now, log)

	authorizer, err := auth.NewAuthorizer(cfg.Auth.Method, codec, sessions, cfg.Session.CookieName, now, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	excluded := append(append([]string{}, auth.DefaultExcludedPaths...), cfg.Auth.ExcludedPaths...)
	middleware, err := auth.NewMiddleware(authorizer, excluded, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled && cfg.Auth.Method == config.AuthMethodSessionCookie {
		csrfSecret = csrfKey(cfg.Auth.TokenSecret)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Config:          cfg,
		Logger:          log,
		Now:             now,
		AuthMiddleware:  middleware,
		PermissionGuard: auth.NewPermissionGuard(usersRepo, log),
		CSRFSecret:      csrfSecret,
		TokenAuth: services.NewTokenAuthService(
			authn, usersRepo, auth.NewPayloadFactory(cfg.Auth, now), codec, log,
		),
		SessionAuth: services.NewSessionAuthService(
			authn, loginSessions, sessions, cfg.Session.CookieConfig(), log,
		),
		Users:       services.NewUserService(usersRepo, hasher, log),
		SampleItems: services.NewSampleItemService(sampleitems.NewRepository(db.DB, log), log),
		Database:    db,
		Version:     version,
	})

	return &App{
		Router: router,
		db:     db,
		purge:  services.NewSessionPurgeService(sessions, now, log),
		log:    log,
	}, nil
}

// StartBackground starts the task queue and the session cleanup schedule
// as configured. Both stop when ctx is cancelled.
func (a *App) StartBackground(ctx context.Context, cfg *config.Config) error {
	cleanup := func(ctx context.Context) error {
		_, err := a.purge.PurgeExpired(ctx)
		return err
	}

	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks), a.log)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		client.Register(tasks.NewPurgeExpiredSessionsQueue(a.purge, a.log))
		a.taskQueue = client
		go client.Start(ctx)

		cleanup = func(context.Context) error {
			_, err := client.Add(tasks.PurgeExpiredSessionsTask{}).Save()
			return err
		}
	}

	if cfg.SessionCleanup.Enabled {
		a.cleanup = scheduler.NewSessionCleanupScheduler(cfg.SessionCleanup.Schedule, cleanup, a.log)
		if err := a.cleanup.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops background work and closes the database.
func (a *App) Shutdown(ctx context.Context) {
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.taskQueue != nil {
		a.taskQueue.Stop(ctx)
		if err := a.taskQueue.Close(); err != nil {
			a.log.Error("error closing task queue", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("error closing database", zap.Error(err))
	}
}

func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("server exiting")
	return nil
}

func Run(cfg *config.Config, log *zap.Logger, version string) error {
	log.Info("starting crudgate",
		zap.String("version", version),
		zap.String("auth_method", string(cfg.Auth.Method)),
		zap.String("session_backend", string(cfg.Session.Backend)),
	)

	app, err := NewApp(cfg, log, version)
	if err != nil {
		return err
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	if err := app.StartBackground(bgCtx, cfg); err != nil {
		bgCancel()
		app.Shutdown(context.Background())
		return err
	}

	return Serve(app.Router, cfg, log, func(ctx context.Context) {
		bgCancel()
		app.Shutdown(ctx)
	})
}
