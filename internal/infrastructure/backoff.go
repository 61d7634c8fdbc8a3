package infrastructure

import (
	"math"
	"math/rand"
	"time"
)

const (
	defaultBackoffFactor = 2.0
	defaultMinJitter     = 100 * time.Millisecond
	defaultMaxJitter     = 1 * time.Second
)

type backoffPolicy struct {
	factor float64
	min    time.Duration
	max    time.Duration
	rng    *rand.Rand
}

// newBackoffPolicy fills zero or inconsistent values with defaults.
func newBackoffPolicy(factor float64, min, max time.Duration) backoffPolicy {
	if factor < 1 {
		factor = defaultBackoffFactor
	}
	if min <= 0 {
		min = defaultMinJitter
	}
	if max <= 0 {
		max = defaultMaxJitter
	}
	if max < min {
		max = min
	}

	return backoffPolicy{
		factor: factor,
		min:    min,
		max:    max,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b backoffPolicy) delay(attempt int) time.Duration {
	backoff := float64(b.min) * math.Pow(b.factor, float64(attempt))
	if backoff > float64(b.max) {
		backoff = float64(b.max)
	}

	base := time.Duration(backoff)
	if b.max <= b.min {
		return base
	}

	jitter := time.Duration(b.rng.Int63n(int64(b.max-b.min) + 1))
	if base+jitter > b.max {
		return b.max
	}

	return base + jitter
}
