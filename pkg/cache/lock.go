package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLockBusy = errors.New("system busy, please try again later (lock)")

type LockOptions struct {
	TTL        time.Duration
	Attempts   int
	RetryDelay time.Duration
}

var DefaultLockOptions = LockOptions{
	TTL:        5 * time.Second,
	Attempts:   3,
	RetryDelay: 100 * time.Millisecond,
}

// WithLock runs fn while holding key. It returns ErrLockBusy when the lock
// could not be taken within opts.Attempts tries.
func WithLock(ctx context.Context, locker Locker, key string, opts LockOptions, fn func() error) error {
	value := uuid.New().String()
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	acquired := false
	for i := 0; i < opts.Attempts; i++ {
		ok, err := locker.AcquireLock(ctx, key, value, opts.TTL)
		if err != nil {
			return err
		}
		if ok {
			acquired = true
			break
		}
		if i < opts.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}
	}
	if !acquired {
		return ErrLockBusy
	}

	defer locker.ReleaseLock(context.WithoutCancel(ctx), key, value)
	return fn()
}
