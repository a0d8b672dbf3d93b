// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls immediately and then on every Interval tick, emitting each
// Result on out. One cycle at a time, no overlap.
//
// Cancelling ctx stops the loop before the next cycle. A cycle already
// running completes with a context without cancellation, and its Result
// is always sent, so the caller must keep draining out until Run returns.
// With Interval == 0 Run performs a single cycle.
func (p *Poller) Run(ctx context.Context, out chan<- Result) {
	cycle := func() bool {
		out <- p.PollOnce(context.WithoutCancel(ctx))
		return ctx.Err() == nil
	}

	if ctx.Err() != nil || !cycle() || p.cfg.Interval == 0 {
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil || !cycle() {
				return
			}
		}
	}
}
