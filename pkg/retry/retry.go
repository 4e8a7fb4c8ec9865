// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config bounds the retry loop.
type Config struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent error")

type permanent struct{ err error }

func (p permanent) Error() string   { return p.err.Error() }
func (p permanent) Unwrap() []error { return []error{p.err, ErrPermanent} }

// Permanent wraps err so Do stops retrying and returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// Do calls fn until it succeeds, returns a permanent error, the attempts are
// used up or ctx is done. The last error is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := cfg.Initial
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) || i == attempts-1 {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}

		delay *= 2
		if cfg.Max > 0 && delay > cfg.Max {
			delay = cfg.Max
		}
	}
	return err
}
