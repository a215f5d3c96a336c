package control

import (
	"context"
	"time"
)

// Sleeper waits for a cue interval.
type Sleeper interface {
	// Sleep waits for d, returning early with ctx.Err() if ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper sleeps on a real timer.
type TimerSleeper struct{}

// Sleep implements Sleeper.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FakeSleeper records requested durations without waiting.
type FakeSleeper struct {
	// Sleeps holds every requested duration in order.
	Sleeps []time.Duration

	// OnSleep, if set, is called after each recorded sleep.
	OnSleep func(d time.Duration)
}

// Sleep records d and returns ctx.Err().
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.Sleeps = append(f.Sleeps, d)
	if f.OnSleep != nil {
		f.OnSleep(d)
	}
	return ctx.Err()
}

// Total returns the sum of all recorded sleeps.
func (f *FakeSleeper) Total() time.Duration {
	var total time.Duration
	for _, d := range f.Sleeps {
		total += d
	}
	return total
}
