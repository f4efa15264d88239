package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storeops-service/pkg/cache"
	"github.com/fekuna/omnipos-storeops-service/pkg/logger"
	"go.uber.org/zap"
)

const lockKey = "lock:rtde:sweep"

// Expirer deletes sessions that expired before now.
type Expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper removes expired RTD&E sessions. Reads already treat them as gone,
// so a late or skipped sweep only costs storage.
type Sweeper struct {
	repo     Expirer
	locker   cache.Locker
	logger   logger.ZapLogger
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(repo Expirer, locker cache.Locker, interval time.Duration, log logger.ZapLogger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		locker:   locker,
		logger:   log.With(zap.String("component", "rtde-sweeper")),
		interval: interval,
		now:      time.Now,
	}
}

// RunOnce sweeps unless another instance holds the sweep lock, in which case
// it returns 0 and no error.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	var deleted int64
	opts := cache.LockOptions{TTL: time.Minute, Attempts: 1}
	err := cache.WithLock(ctx, s.locker, lockKey, opts, func() error {
		n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
		deleted = n
		return err
	})
	if errors.Is(err, cache.ErrLockBusy) {
		s.logger.Debug("sweep skipped, another instance holds the lock")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("expired rtde sessions removed", zap.Int64("count", deleted))
	}
	return deleted, nil
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting RTD&E session sweeper", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping RTD&E session sweeper")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("Failed to sweep expired sessions", zap.Error(err))
			}
		}
	}
}
