package scheduler

import (
	"context"
	"time"

	"github.com/mcm-alerts/mcm-alerts/internal/auth"
	"go.uber.org/zap"
)

// SessionSweeper periodically purges expired session rows so the sessions
// table does not grow without bound.
type SessionSweeper struct {
	log      *zap.Logger
	interval time.Duration
	cancel   context.CancelFunc
}

func NewSessionSweeper(log *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		log:      log,
		interval: time.Hour,
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *SessionSweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.run(ctx)
}

// Stop cancels the sweep loop.
func (s *SessionSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *SessionSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("session sweeper stopping")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SessionSweeper) sweep() {
	removed, err := auth.DeleteExpiredSessions()

	if err != nil {
		s.log.Error("session sweep failed", zap.Error(err))
		return
	}

	if removed > 0 {
		s.log.Info("expired sessions removed", zap.Int64("count", removed))
	}
}
