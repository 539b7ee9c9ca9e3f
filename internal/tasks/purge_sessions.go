package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// SessionPurger deletes login sessions whose expiry has passed.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeExpiredSessionsTask removes expired login sessions. It carries no
// data; the cutoff is the purger's current time when the task runs.
type PurgeExpiredSessionsTask struct{}

// Config returns the queue configuration for session purge tasks.
func (t PurgeExpiredSessionsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_expired_sessions",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeExpiredSessionsProcessor creates a processor function for PurgeExpiredSessionsTask.
func PurgeExpiredSessionsProcessor(purger SessionPurger, log *zap.Logger) backlite.QueueProcessor[PurgeExpiredSessionsTask] {
	return func(ctx context.Context, _ PurgeExpiredSessionsTask) error {
		if purger == nil {
			return fmt.Errorf("session purger not configured")
		}

		deleted, err := purger.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}

		log.Info("purged expired sessions", zap.Int64("deleted", deleted))
		return nil
	}
}

// NewPurgeExpiredSessionsQueue creates a backlite queue for session purge tasks.
func NewPurgeExpiredSessionsQueue(purger SessionPurger, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(PurgeExpiredSessionsProcessor(purger, log.Named("purge_sessions")))
}
