package loginsessions

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entities"
)

// Backend is the session persistence used by login, the request gate and
// the purge job.
type Backend interface {
	Add(ctx context.Context, session *entities.LoginSession) error
	GetByID(ctx context.Context, id string) (*entities.LoginSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ Backend = (*Repository)(nil)
	_ Backend = (*StoreRepository)(nil)
)

// NewBackend returns the repository selected by SESSION_BACKEND. The store
// backend shares the main sqlite connection.
func NewBackend(kind config.SessionBackend, db *gorm.DB, now func() time.Time) (Backend, error) {
	switch kind {
	case config.SessionBackendDatabase, "":
		return NewRepository(db), nil
	case config.SessionBackendStore:
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		return NewStoreRepository(sqlDB, now)
	default:
		return nil, fmt.Errorf("unknown session backend %q", kind)
	}
}
