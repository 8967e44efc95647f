package reactor

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/reactor/internal/engine"
	"github.com/alexisbeaulieu97/reactor/internal/logging"
	"github.com/alexisbeaulieu97/reactor/internal/ports"
)

// RunOptions mirrors the Run API's documented option set (§6). Zero values
// take the documented defaults: MaxConcurrency 0 means cpu_count, Timeout
// and MaxIterations 0 means infinite, HaltTimeout 0 means 5s.
type RunOptions struct {
	MaxConcurrency int
	Timeout        time.Duration
	MaxIterations  int
	HaltTimeout    time.Duration
	AsyncAllowed   *bool
	ConcurrencyKey string
	Logger         ports.Logger
}

// Outcome is the closed result of a Run call: exactly one of Value, Halted,
// or Err is meaningful.
type Outcome struct {
	Value  interface{}
	Halted *Reactor
	Err    error
}

// Run executes r (or resumes it, if it was previously Halted) against the
// given inputs and context. Passing back a Halted reactor as r resumes it
// from where it left off.
func Run(ctx context.Context, r *Reactor, inputs map[string]interface{}, userContext map[string]interface{}, opts RunOptions) Outcome {
	eopts := engine.DefaultOptions()
	eopts.MaxConcurrency = opts.MaxConcurrency
	eopts.ConcurrencyKey = opts.ConcurrencyKey

	if opts.Timeout > 0 {
		eopts.Timeout = opts.Timeout
	}
	if opts.MaxIterations > 0 {
		eopts.MaxIterations = opts.MaxIterations
	}
	if opts.HaltTimeout > 0 {
		eopts.HaltTimeout = opts.HaltTimeout
	}
	if opts.AsyncAllowed != nil {
		eopts.AsyncAllowed = *opts.AsyncAllowed
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNoOpLogger()
	}
	ctx = ports.WithReactorID(ctx, r.ID)

	result := engine.Run(ctx, r, inputs, userContext, eopts, log)
	return Outcome{Value: result.Value, Halted: result.Halted, Err: result.Err}
}
