// Package loginsessions persists cookie login sessions.
//
// Two backends satisfy auth.SessionStore:
//
//	repo := loginsessions.NewRepository(db)              // login_sessions table
//	repo, err := loginsessions.NewStoreRepository(sqlDB) // scs sqlite3store table
package loginsessions

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

var errSessionNotFound = apperr.NotFound("Login session not found")

// Repository stores sessions in the login_sessions table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Add(ctx context.Context, session *entities.LoginSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.LoginSession, error) {
	var session entities.LoginSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&session).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Delete removes the session row. Unknown ids are ignored.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&entities.LoginSession{}).Error
}

// DeleteExpired removes every session that expired at or before now and
// returns how many were removed.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().
		Where("expires_at <= ?", now.UTC()).
		Delete(&entities.LoginSession{})
	return res.RowsAffected, res.Error
}
