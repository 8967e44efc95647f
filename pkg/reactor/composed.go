package reactor

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/reactor/internal/engine"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/runner"
)

// composedStep adapts a child Reactor into a Step: running it drives the
// child to completion (sharing the parent's concurrency pool) and surfaces
// its return value or error as the composed step's own outcome.
type composedStep struct {
	child *Reactor
}

func (c composedStep) Run(ctx context.Context, args map[string]interface{}, reactorCtx map[string]interface{}) model.RunResult {
	concurrencyKey, _ := reactorCtx[runner.CtxConcurrencyKey].(string)

	opts := engine.DefaultOptions()
	opts.ConcurrencyKey = concurrencyKey

	result := engine.Run(ctx, c.child, args, map[string]interface{}{}, opts, nil)
	switch {
	case result.Err != nil:
		return model.Err(result.Err)
	case result.Halted != nil:
		return model.Halt(nil)
	default:
		return model.Ok(result.Value)
	}
}

func (c composedStep) String() string {
	return fmt.Sprintf("compose(%s)", c.child.ID)
}
