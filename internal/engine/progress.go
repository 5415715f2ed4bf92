package engine

import (
	"context"
	"time"
)

// ProgressStrategy drives the Creating phase's bounded progress sequence.
// Run blocks until the sequence completes or ctx is cancelled, invoking tick
// with monotonically increasing fractions in (0, 1].
type ProgressStrategy interface {
	Run(ctx context.Context, tick func(fraction float64))
}

// TimedProgress is the default strategy: a simulated bounded duration not
// tied to real work, advancing in fixed increments.
type TimedProgress struct {
	Duration time.Duration
	Steps    int
}

func (p TimedProgress) Run(ctx context.Context, tick func(float64)) {
	steps := p.Steps
	if steps <= 0 {
		steps = 10
	}
	duration := p.Duration
	if duration <= 0 {
		duration = 1200 * time.Millisecond
	}
	interval := duration / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		tick(float64(i) / float64(steps))
	}
}

// ImmediateProgress completes synchronously. Used in tests so the Creating
// phase advances without waiting on timers.
type ImmediateProgress struct{}

func (ImmediateProgress) Run(ctx context.Context, tick func(float64)) {
	tick(1)
}
