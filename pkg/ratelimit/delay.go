package ratelimit

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"liscraper/pkg/config"
)

// DelayPolicy produces a uniformly distributed wait in [min, max] seconds
// before each simulated request.
type DelayPolicy struct {
	min   float64
	max   float64
	rng   *rand.Rand
	sleep func(time.Duration)
	mu    sync.Mutex
}

// NewDelayPolicy creates a delay policy. Bounds are in seconds and must
// satisfy 0 <= min <= max; otherwise a config error is returned.
func NewDelayPolicy(minSeconds, maxSeconds float64, rng *rand.Rand) (*DelayPolicy, error) {
	if err := config.ValidateDelay(minSeconds, maxSeconds); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &DelayPolicy{
		min:   minSeconds,
		max:   maxSeconds,
		rng:   rng,
		sleep: time.Sleep,
	}, nil
}

// WithSleep replaces the blocking function, mainly for tests
func (d *DelayPolicy) WithSleep(sleep func(time.Duration)) *DelayPolicy {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sleep = sleep
	return d
}

// Bounds returns the configured interval in seconds
func (d *DelayPolicy) Bounds() (float64, float64) {
	return d.min, d.max
}

// Sample draws a wait duration without blocking
func (d *DelayPolicy) Sample() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	seconds := d.min
	if d.max > d.min {
		seconds += d.rng.Float64() * (d.max - d.min)
	}
	// rounding keeps decimal bounds such as 2.01s from truncating below min
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// Wait samples a duration, blocks for it and returns it.
// The wait always runs to completion.
func (d *DelayPolicy) Wait() time.Duration {
	delay := d.Sample()

	d.mu.Lock()
	sleep := d.sleep
	d.mu.Unlock()

	if delay > 0 {
		sleep(delay)
	}
	return delay
}
