package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// CleanupFunc performs one expired-session cleanup. It either enqueues the
// purge task or purges inline when the task queue is disabled.
type CleanupFunc func(ctx context.Context) error

// SessionCleanupScheduler periodically removes expired login sessions.
type SessionCleanupScheduler struct {
	schedule string
	cleanup  CleanupFunc
	log      *zap.Logger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isCleaning bool
	cancelFunc context.CancelFunc
}

func NewSessionCleanupScheduler(schedule string, cleanup CleanupFunc, log *zap.Logger) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		schedule: schedule,
		cleanup:  cleanup,
		log:      log.Named("session_cleanup"),
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the cron job. It stops on its own when ctx is cancelled.
func (s *SessionCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.log.Info("scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(entryID).Next),
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running cleanup to finish.
func (s *SessionCleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// The lock is released first: a job in flight takes it on entry.
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)
	if cancel != nil {
		cancel()
	}

	s.log.Info("scheduler stopped")
}

// RunNow triggers an immediate cleanup.
func (s *SessionCleanupScheduler) RunNow() {
	go s.runCleanup()
}

func (s *SessionCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur
func (s *SessionCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

func (s *SessionCleanupScheduler) runCleanup() {
	s.mu.Lock()
	if s.isCleaning {
		s.mu.Unlock()
		s.log.Info("cleanup skipped, previous run still in progress")
		return
	}
	s.isCleaning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isCleaning = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.cleanup(ctx); err != nil {
		s.log.Error("session cleanup failed", zap.Error(err))
	}
}
