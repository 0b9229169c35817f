package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler drives the recurring shuffle of one session: every interval it
// announces a countdown, waits for the countdown, then shuffles.
// Stop is final; a new cycle needs a new Scheduler.
type Scheduler struct {
	clock     clockwork.Clock
	interval  time.Duration
	countdown time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(clock clockwork.Clock, interval, countdown time.Duration) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		clock:     clock,
		interval:  interval,
		countdown: countdown,
		done:      make(chan struct{}),
	}
}

// Start runs the loop until ctx is cancelled or Stop is called.
// onCountdown and onShuffle are invoked from the scheduler goroutine.
// The ticker is armed before Start returns.
func (s *Scheduler) Start(ctx context.Context, onCountdown func(time.Duration), onShuffle func()) {
	ctx, s.cancel = context.WithCancel(ctx)
	ticker := s.clock.NewTicker(s.interval)
	go s.loop(ctx, ticker, onCountdown, onShuffle)
}

func (s *Scheduler) loop(ctx context.Context, ticker clockwork.Ticker, onCountdown func(time.Duration), onShuffle func()) {
	defer close(s.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		onCountdown(s.countdown)

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.countdown):
		}

		onShuffle()
	}
}

// Stop cancels the loop without waiting for it. Safe to call more than once
// and on a scheduler that was never started.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Done is closed once the loop goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
