package auth

// scheduler.go runs the periodic session cleanup. Expired sessions already
// fail validation on use; the sweep only keeps the sessions table from
// growing without bound.
//
// The scheduler is long-running and context-aware for graceful shutdown. It
// logs progress and errors but never fails the application when an
// individual sweep fails.

import (
	"context"
	"time"
)

// StartPurgeScheduler starts a background loop that deletes expired sessions.
// It runs immediately on start, then every interval, and stops when the
// context is cancelled.
func (s *Service) StartPurgeScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	s.log.Info("session purge scheduler started", "interval", interval)

	s.runPurge(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session purge scheduler stopped")
			return
		case <-ticker.C:
			s.runPurge(ctx)
		}
	}
}

func (s *Service) runPurge(ctx context.Context) {
	start := time.Now()
	purged, err := s.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Error("session purge failed", "error", err)
		return
	}
	if purged > 0 {
		s.log.Info("purged expired sessions",
			"sessions_purged", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
