// Package pace throttles dispatch steps for paced replay of simulated
// transfers. The engine itself never blocks; pacing lives in the driving
// loop.
package pace

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type Pacer struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// New creates a pacer allowing stepsPerSec dispatch steps per second.
// Zero means unpaced.
func New(stepsPerSec int) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(stepsPerSec), max(stepsPerSec, 1)),
	}
}

// Wait blocks until the next step is allowed, or the context is done.
// An unpaced (zero-rate) pacer never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.RLock()
	limiter := p.limiter
	limit := limiter.Limit()
	p.mu.RUnlock()

	if limit == 0 {
		return nil
	}
	return limiter.Wait(ctx)
}

// SetRate changes the allowed steps per second.
func (p *Pacer) SetRate(stepsPerSec int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiter.SetLimit(rate.Limit(stepsPerSec))
	p.limiter.SetBurst(max(stepsPerSec, 1))
}
