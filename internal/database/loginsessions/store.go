package loginsessions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/crudgate/internal/entities"
)

// julianLayout matches the format sqlite3store passes to julianday().
const julianLayout = "2006-01-02T15:04:05.999"

type storedSession struct {
	UserUUID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// StoreRepository keeps sessions in an scs key/value store. Expired
// entries are invisible to Find, so they read as missing.
type StoreRepository struct {
	store scs.Store
	db    *sql.DB
	now   func() time.Time
}

// NewStoreRepository creates the scs sessions table on sqlDB if needed.
// Expired rows are purged by DeleteExpired, not by a store goroutine.
func NewStoreRepository(sqlDB *sql.DB, now func() time.Time) (*StoreRepository, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &StoreRepository{
		store: sqlite3store.NewWithCleanupInterval(sqlDB, 0),
		db:    sqlDB,
		now:   now,
	}, nil
}

func (r *StoreRepository) Add(_ context.Context, session *entities.LoginSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now().UTC()
	}
	session.UpdatedAt = session.CreatedAt

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(storedSession{
		UserUUID:  session.UserUUID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.store.Commit(session.ID, buf.Bytes(), session.ExpiresAt)
}

func (r *StoreRepository) GetByID(_ context.Context, id string) (*entities.LoginSession, error) {
	data, found, err := r.store.Find(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionNotFound
	}

	var stored storedSession
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &entities.LoginSession{
		ID:        id,
		UserUUID:  stored.UserUUID,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.CreatedAt,
	}, nil
}

func (r *StoreRepository) Delete(_ context.Context, id string) error {
	return r.store.Delete(id)
}

func (r *StoreRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expiry <= julianday(?)",
		now.UTC().Format(julianLayout),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
