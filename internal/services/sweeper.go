package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasktracker/backend/repository"
)

// SweeperConfig controls how frequently expired sessions are purged.
type SweeperConfig struct {
	Interval time.Duration
}

// SessionSweeper periodically removes expired sessions from the store.
// Redis expires its keys on its own; the embedded bolt store relies on
// this sweep, plus lazy deletion on read, to keep the file from
// accumulating dead records.
type SessionSweeper struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      SweeperConfig
}

func NewSessionSweeper(sessions repository.SessionRepository, logger *zap.Logger, cfg SweeperConfig) *SessionSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sw := &SessionSweeper{
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sw.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := sw.Sweep(ctx); err != nil {
			sw.logger.Error("session sweep failed", zap.Error(err))
		}
	})

	return sw
}

// Start launches the cron scheduler.
func (sw *SessionSweeper) Start() {
	if sw == nil || sw.cron == nil {
		return
	}
	sw.cron.Start()
	sw.logger.Info("session sweeper started", zap.Duration("interval", sw.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (sw *SessionSweeper) Stop(ctx context.Context) {
	if sw == nil || sw.cron == nil {
		return
	}
	stopCtx := sw.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sw.logger.Info("session sweeper stopped")
}

// Sweep removes sessions that have already expired.
func (sw *SessionSweeper) Sweep(ctx context.Context) error {
	if sw == nil || sw.sessions == nil {
		return nil
	}

	purged, err := sw.sessions.PurgeExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if purged > 0 {
		sw.logger.Info("expired sessions purged", zap.Int("count", purged))
	}
	return nil
}
