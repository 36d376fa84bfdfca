package veo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollerWaitsBeforeEachCheck(t *testing.T) {
	var sleeps []time.Duration
	checks := 0
	p := Poller{
		Interval: 3 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}

	err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		checks++
		return checks == 3, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if checks != 3 {
		t.Fatalf("checks = %d, want 3", checks)
	}
	if len(sleeps) != 3 {
		t.Fatalf("sleeps = %d, want one per check", len(sleeps))
	}
	for _, d := range sleeps {
		if d != 3*time.Second {
			t.Fatalf("sleep duration = %v, want 3s", d)
		}
	}
}

func TestPollerPropagatesCheckError(t *testing.T) {
	boom := errors.New("boom")
	p := Poller{Sleep: func(ctx context.Context, d time.Duration) error { return nil }}

	err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestPollerStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Poller{Interval: time.Millisecond}
	err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
		t.Fatalf("check must not run after cancellation")
		return true, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	var seen time.Duration
	p := Poller{
		Sleep: func(ctx context.Context, d time.Duration) error {
			seen = d
			return nil
		},
	}
	if err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) { return true, nil }); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if seen != DefaultPollInterval {
		t.Fatalf("interval = %v, want default %v", seen, DefaultPollInterval)
	}
}
