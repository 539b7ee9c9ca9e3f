package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// AuthMethod selects the authorizer used by the request gate.
type AuthMethod string

const (
	AuthMethodBearerAccessToken AuthMethod = "bearer_access_token"
	AuthMethodSessionCookie     AuthMethod = "session_cookie"
)

// SameSite mirrors the cookie SameSite attribute values accepted in configuration.
type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
	SameSiteNone   SameSite = "none"
)

// SessionBackend selects where login sessions are persisted.
type SessionBackend string

const (
	SessionBackendDatabase SessionBackend = "database" // login_sessions table via gorm
	SessionBackendStore    SessionBackend = "store"    // scs sqlite3store key/value table
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		App
		HTTP
		Global
		Log
		Database
		Auth
		Session
		Tasks
		SessionCleanup
	}

	App struct {
		Name     string
		Timezone string
	}
	HTTP struct {
		Port        int32
		Host        string
		CORSOrigins []string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level       string
		Development bool
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // sqlite file path
		DSN    string // postgres connection string
	}
	Auth struct {
		Method                    AuthMethod
		TokenIssuer               string
		TokenAudience             string
		TokenSecret               string
		TokenAlgorithm            string
		AccessTokenExpireMinutes  int
		RefreshTokenExpireMinutes int
		PasswordHasher            string // "bcrypt" or "argon2id"
		BcryptCost                int
		CSRFEnabled               bool
		ExcludedPaths             []string // appended to the default exclusion list
	}
	Session struct {
		ExpireMinutes  int
		Backend        SessionBackend
		CookieName     string
		CookieHTTPOnly bool
		CookieSecure   bool
		CookieSameSite SameSite
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	SessionCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

// SessionCookieConfig describes the cookie written on session login.
type SessionCookieConfig struct {
	Key      string
	HTTPOnly bool
	MaxAge   int // seconds
	SameSite SameSite
	Secure   bool
}

// CookieConfig derives the session cookie descriptor.
func (s Session) CookieConfig() SessionCookieConfig {
	return SessionCookieConfig{
		Key:      s.CookieName,
		HTTPOnly: s.CookieHTTPOnly,
		MaxAge:   s.ExpireMinutes * 60,
		SameSite: s.CookieSameSite,
		Secure:   s.CookieSecure,
	}
}

// Lifetime returns the session expiry window.
func (s Session) Lifetime() time.Duration {
	return time.Duration(s.ExpireMinutes) * time.Minute
}

// Location resolves the configured timezone. Validate rejects unknown
// names, so the UTC fallback only covers an unvalidated config.
func (a App) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock returns a "now" function in the configured timezone.
func (a App) Clock() func() time.Time {
	loc := a.Location()
	return func() time.Time {
		return time.Now().In(loc)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_name", "crudgate")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_origins", "")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	// Database defaults
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("auth_method", string(AuthMethodSessionCookie))
	v.SetDefault("auth_token_issuer", DefaultTokenIssuer)
	v.SetDefault("auth_token_audience", DefaultTokenAudience)
	v.SetDefault("auth_token_secret", "") // Auto-generated if empty
	v.SetDefault("auth_token_algorithm", "HS256")
	v.SetDefault("auth_access_token_expire_minutes", 30)
	v.SetDefault("auth_refresh_token_expire_minutes", 60*24*7)
	v.SetDefault("auth_password_hasher", "bcrypt")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_excluded_paths", "")

	// Session defaults
	v.SetDefault("session_expire_minutes", 60*24*7)
	v.SetDefault("session_backend", string(SessionBackendDatabase))
	v.SetDefault("session_cookie_name", "session")
	v.SetDefault("session_cookie_httponly", true)
	v.SetDefault("session_cookie_secure", true)
	v.SetDefault("session_cookie_samesite", string(SameSiteLax))

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("session_cleanup_enabled", true)
	v.SetDefault("session_cleanup_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		App: App{
			Name:     v.GetString("APP_NAME"),
			Timezone: v.GetString("TIMEZONE"),
		},
		HTTP: HTTP{
			Port:        v.GetInt32("PORT"),
			Host:        v.GetString("HOST"),
			CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			Method:                    AuthMethod(v.GetString("AUTH_METHOD")),
			TokenIssuer:               v.GetString("AUTH_TOKEN_ISSUER"),
			TokenAudience:             v.GetString("AUTH_TOKEN_AUDIENCE"),
			TokenSecret:               v.GetString("AUTH_TOKEN_SECRET"),
			TokenAlgorithm:            v.GetString("AUTH_TOKEN_ALGORITHM"),
			AccessTokenExpireMinutes:  v.GetInt("AUTH_ACCESS_TOKEN_EXPIRE_MINUTES"),
			RefreshTokenExpireMinutes: v.GetInt("AUTH_REFRESH_TOKEN_EXPIRE_MINUTES"),
			PasswordHasher:            v.GetString("AUTH_PASSWORD_HASHER"),
			BcryptCost:                v.GetInt("AUTH_BCRYPT_COST"),
			CSRFEnabled:               v.GetBool("AUTH_CSRF_ENABLED"),
			ExcludedPaths:             splitList(v.GetString("AUTH_EXCLUDED_PATHS")),
		},
		Session: Session{
			ExpireMinutes:  v.GetInt("SESSION_EXPIRE_MINUTES"),
			Backend:        SessionBackend(v.GetString("SESSION_BACKEND")),
			CookieName:     v.GetString("SESSION_COOKIE_NAME"),
			CookieHTTPOnly: v.GetBool("SESSION_COOKIE_HTTPONLY"),
			CookieSecure:   v.GetBool("SESSION_COOKIE_SECURE"),
			CookieSameSite: SameSite(strings.ToLower(v.GetString("SESSION_COOKIE_SAMESITE"))),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		SessionCleanup: SessionCleanup{
			Enabled:  v.GetBool("SESSION_CLEANUP_ENABLED"),
			Schedule: v.GetString("SESSION_CLEANUP_SCHEDULE"),
		},
	}
}

// Validate checks enum-like settings and numeric bounds.
func (c *Config) Validate() error {
	switch c.Auth.Method {
	case AuthMethodBearerAccessToken, AuthMethodSessionCookie:
	default:
		return fmt.Errorf("unknown AUTH_METHOD %q", c.Auth.Method)
	}

	if c.App.Timezone != "" {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			return fmt.Errorf("unknown TIMEZONE %q: %w", c.App.Timezone, err)
		}
	}

	// Responses always allow credentials, so every origin is listed
	// explicitly and a wildcard is refused.
	for _, origin := range c.HTTP.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must list origins explicitly, \"*\" is not allowed with credentials")
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must start with http:// or https://", origin)
		}
	}

	if strings.TrimSpace(c.Auth.TokenIssuer) == "" {
		return fmt.Errorf("AUTH_TOKEN_ISSUER must not be empty")
	}
	if strings.TrimSpace(c.Auth.TokenAudience) == "" {
		return fmt.Errorf("AUTH_TOKEN_AUDIENCE must not be empty")
	}

	switch c.Auth.TokenAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_ALGORITHM %q", c.Auth.TokenAlgorithm)
	}

	switch c.Auth.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unknown AUTH_PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}

	if c.Auth.AccessTokenExpireMinutes <= 0 || c.Auth.RefreshTokenExpireMinutes <= 0 {
		return fmt.Errorf("token expiry minutes must be positive")
	}
	if c.Session.ExpireMinutes <= 0 {
		return fmt.Errorf("SESSION_EXPIRE_MINUTES must be positive")
	}

	switch c.Session.CookieSameSite {
	case SameSiteLax, SameSiteStrict, SameSiteNone:
	default:
		return fmt.Errorf("unknown SESSION_COOKIE_SAMESITE %q", c.Session.CookieSameSite)
	}

	switch c.Session.Backend {
	case SessionBackendDatabase:
	case SessionBackendStore:
		if c.Database.Driver != DatabaseDriverSQLite {
			return fmt.Errorf("SESSION_BACKEND=store requires the sqlite database driver")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}

	switch c.Database.Driver {
	case DatabaseDriverSQLite:
	case DatabaseDriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver)
	}

	return nil
}
