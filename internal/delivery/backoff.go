package delivery

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes exponential delays with a cap and random jitter.
type Backoff struct {
	// BaseDelay is the delay after the first failure.
	BaseDelay time.Duration

	// MaxDelay is the upper bound on any delay.
	MaxDelay time.Duration

	// Jitter is the proportion of randomness applied to the delay (0.0 to 1.0).
	// A jitter of 0.2 means the delay varies by +/- 20%.
	Jitter float64
}

// DefaultBackoff waits 1s after the first failed flush, doubling up to 2m.
var DefaultBackoff = Backoff{
	BaseDelay: 1 * time.Second,
	MaxDelay:  2 * time.Minute,
	Jitter:    0.2,
}

// Delay returns the wait after the given number of consecutive failures.
// It returns 0 when failures is 0.
func (b Backoff) Delay(failures int) time.Duration {
	if failures <= 0 {
		return 0
	}

	delay := float64(b.BaseDelay) * math.Pow(2, float64(failures-1))
	if delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}

	if b.Jitter > 0 {
		jitterRange := delay * b.Jitter
		//nolint:gosec // math/rand is fine for jitter
		delay += jitterRange * (rand.Float64()*2 - 1)
	}

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}
