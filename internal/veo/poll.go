package veo

import (
	"context"
	"time"
)

// DefaultPollInterval is used when a Poller is constructed without one.
const DefaultPollInterval = 10 * time.Second

// SleepFunc suspends the caller for d or until ctx is canceled. Tests inject
// a recording implementation to keep the loop deterministic.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller re-checks a condition on a fixed interval until it reports done.
// Each round waits first, then checks, matching the remote operation's
// lifecycle where a freshly submitted job is never already complete.
type Poller struct {
	Interval time.Duration
	Sleep    SleepFunc
}

// Wait blocks until check reports done, check fails, or ctx is canceled.
func (p Poller) Wait(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for {
		if err := sleep(ctx, interval); err != nil {
			return err
		}
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
