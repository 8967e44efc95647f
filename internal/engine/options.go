package engine

import "time"

// Infinite marks an Options duration/count field as unbounded.
const Infinite = -1

// Options configures a single Run call (§6 Run API).
type Options struct {
	// MaxConcurrency is the pool size allocated when ConcurrencyKey is
	// empty. Ignored when joining an existing pool.
	MaxConcurrency int
	// Timeout is wall-clock, checked at iteration head. Infinite disables it.
	Timeout time.Duration
	// MaxIterations is an internal fuel limit. Infinite disables it.
	MaxIterations int
	// HaltTimeout bounds how long shutdown drain waits for in-flight tasks.
	HaltTimeout time.Duration
	// AsyncAllowed disables all async dispatch when false; every ready step
	// runs synchronously.
	AsyncAllowed bool
	// ConcurrencyKey joins an existing pool (e.g. a parent reactor's),
	// rather than allocating a fresh one sized by MaxConcurrency.
	ConcurrencyKey string
}

// DefaultOptions mirrors the Run API's documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxConcurrency: 0, // 0 means "use runtime.NumCPU()" at call time
		Timeout:        Infinite,
		MaxIterations:  Infinite,
		HaltTimeout:    5 * time.Second,
		AsyncAllowed:   true,
	}
}

// pollWindow is how long CollectCompleted waits per iteration for async
// tasks to finish before the loop moves on to dispatch more work.
const pollWindow = 20 * time.Millisecond
