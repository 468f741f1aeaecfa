package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper is the slice of the session store the janitor needs.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Janitor periodically deletes session rows that can never be used again.
// The protocol never depends on this: validity is always re-checked at
// lookup, so the sweep is purely about keeping the table small.
type Janitor struct {
	sessions SessionSweeper
	interval time.Duration
	logger   *zap.Logger
}

func NewJanitor(sessions SessionSweeper, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{sessions: sessions, interval: interval, logger: logger}
}

// Run sweeps on a ticker until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := j.sessions.DeleteExpired(ctx)
			if err != nil {
				j.logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				j.logger.Info("swept dead sessions", zap.Int64("deleted", n))
			}
		}
	}
}
