package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionPurgeService deletes expired login sessions. It backs the
// scheduled task and the purge-sessions command.
type SessionPurgeService struct {
	purger ExpiredSessionPurger
	now    func() time.Time
	log    *zap.Logger
}

func NewSessionPurgeService(purger ExpiredSessionPurger, now func() time.Time, log *zap.Logger) *SessionPurgeService {
	if now == nil {
		now = time.Now
	}
	return &SessionPurgeService{purger: purger, now: now, log: log.Named("session_purge")}
}

// PurgeExpired removes every session expired at the current time and
// reports how many were deleted.
func (s *SessionPurgeService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.purger.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.log.Info("expired sessions purged", zap.Int64("removed", removed))
	return removed, nil
}
