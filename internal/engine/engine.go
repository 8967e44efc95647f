// Package engine implements the executor loop (C10): the bounded iteration
// machine that plans pending steps, collects async completions, dispatches
// ready steps sync or async, and drives a reactor to Successful, Halted, or
// Failed.
package engine

import (
	"context"
	"runtime"
	"time"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/plan"
	"github.com/alexisbeaulieu97/reactor/internal/pool"
	"github.com/alexisbeaulieu97/reactor/internal/ports"
	"github.com/alexisbeaulieu97/reactor/internal/reactor"
	"github.com/alexisbeaulieu97/reactor/internal/runner"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// Result is the closed outcome of a Run call.
type Result struct {
	Value  interface{}
	Halted *reactor.Reactor
	Err    error
}

// Run drives rx through the executor loop until it reaches a terminal
// state (Successful, Failed) or is cooperatively Halted. Passing back a
// previously Halted reactor as rx resumes it.
func Run(ctx context.Context, rx *reactor.Reactor, inputs map[string]interface{}, userContext map[string]interface{}, opts Options, log ports.Logger) Result {
	if !rx.CanRun() {
		return Result{Err: reactorerrors.NewInvariantError("reactor is not in a runnable state")}
	}
	if log == nil {
		log = noopLogger{}
	}

	fresh := rx.LifecycleState == reactor.Pending
	if fresh {
		rx.InputValues = inputs
		for k, v := range userContext {
			rx.Context[k] = v
		}
		rx.Context[model.PrivateInputsKey] = rx.InputValues
	}
	rx.Context = rx.Middleware.FoldInit(rx.Context)
	rx.LifecycleState = reactor.Executing

	poolKey, owned := resolvePool(ctx, opts)
	if owned {
		defer pool.ReleasePool(poolKey)
	}

	sup := runner.NewAsyncSupervisor(poolKey)
	retries := make(map[model.Ref]int)
	startedAt := time.Now()
	maxIterations := opts.MaxIterations

	for iteration := 0; ; iteration++ {
		if maxIterations != Infinite && iteration >= maxIterations {
			return haltReactor(rx, sup, opts)
		}
		if opts.Timeout != Infinite && time.Since(startedAt) >= opts.Timeout {
			return haltReactor(rx, sup, opts)
		}

		if len(rx.Steps) > 0 {
			pending := rx.Steps
			rx.Steps = nil
			if err := plan.Plan(rx.Graph, pending); err != nil {
				return failReactor(ctx, rx, sup, opts, reactorerrors.NewAggregate(err), log)
			}
		}

		var batch []runner.StepResult
		if opts.AsyncAllowed {
			batch = sup.CollectCompleted(pollWindow)
		}
		if len(batch) > 0 {
			agg := reactorerrors.NewAggregate()
			haltRequested := false
			for _, result := range batch {
				applyResult(ctx, rx, result, agg, log)
				if result.Outcome == runner.HaltedOutcome {
					haltRequested = true
				}
			}
			if !agg.Empty() {
				return failReactor(ctx, rx, sup, opts, agg, log)
			}
			if haltRequested {
				return haltReactor(rx, sup, opts)
			}
			continue
		}

		ready := readySteps(rx.Graph, sup)
		asyncReady, syncReady := partition(ready, opts.AsyncAllowed)

		if len(asyncReady) > 0 {
			started := sup.StartSteps(ctx, asyncReady, rx.Context, rx.IntermediateResults, string(poolKey), retries, rx.Middleware, rx.ID)
			if started > 0 {
				continue
			}
		}

		if len(syncReady) > 0 {
			node := syncReady[0]
			result := runSyncStep(ctx, node, rx, string(poolKey), retries[node.Ref])
			agg := reactorerrors.NewAggregate()
			applyResult(ctx, rx, result, agg, log)
			if !agg.Empty() {
				return failReactor(ctx, rx, sup, opts, agg, log)
			}
			if result.Outcome == runner.HaltedOutcome {
				return haltReactor(rx, sup, opts)
			}
			continue
		}

		if rx.Graph.Len() == 0 && sup.InFlight() == 0 {
			value, ok := rx.IntermediateResults[rx.Return]
			if !ok {
				return failReactor(ctx, rx, sup, opts,
					reactorerrors.NewAggregate(reactorerrors.NewInvariantError("no result for return step "+rx.Return)), log)
			}
			rx.LifecycleState = reactor.Successful
			value = rx.Middleware.FoldComplete(value)
			return Result{Value: value}
		}

		if sup.InFlight() > 0 {
			// Tasks are still running; loop back around to re-collect.
			continue
		}

		return Result{Err: reactorerrors.NewInvariantError("no ready step but graph is non-empty")}
	}
}

func resolvePool(ctx context.Context, opts Options) (pool.Key, bool) {
	if opts.ConcurrencyKey != "" {
		return pool.Key(opts.ConcurrencyKey), false
	}
	limit := opts.MaxConcurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return pool.AllocatePool(ctx, limit), true
}

func readySteps(g *plan.Graph, sup *runner.AsyncSupervisor) []*plan.Node {
	var ready []*plan.Node
	for _, node := range g.Ready() {
		if sup.Running(node.Ref) {
			continue
		}
		ready = append(ready, node)
	}
	return ready
}

// runSyncStep resolves and runs node inline on the executor's own
// goroutine — reading rx.Context/rx.IntermediateResults directly here is
// safe because nothing else touches them concurrently with this call.
func runSyncStep(ctx context.Context, node *plan.Node, rx *reactor.Reactor, poolKey string, retryCount int) runner.StepResult {
	args, baseCtx, err := runner.PrepareStep(node, rx.Context, rx.IntermediateResults, poolKey)
	if err != nil {
		return runner.StepResult{Ref: node.Ref, Name: node.Name, Outcome: runner.Failed, Err: err, Retries: retryCount}
	}
	return runner.RunStep(ctx, node, args, baseCtx, retryCount, rx.Middleware, rx.ID)
}

func partition(ready []*plan.Node, asyncAllowed bool) (asyncReady, syncReady []*plan.Node) {
	for _, node := range ready {
		if asyncAllowed && node.Step.Async.Decide(node.Step.Options) {
			asyncReady = append(asyncReady, node)
		} else {
			syncReady = append(syncReady, node)
		}
	}
	return asyncReady, syncReady
}

// applyResult folds one terminal step result into reactor state: pushing
// undo entries, recording kept results, queuing injected steps, and
// removing the completed vertex from the graph.
func applyResult(ctx context.Context, rx *reactor.Reactor, result runner.StepResult, agg *reactorerrors.Aggregate, log ports.Logger) {
	node, ok := rx.Graph.Node(result.Ref)
	if !ok {
		return
	}
	hasDependent := len(collectDependentRefs(rx.Graph, result.Ref)) > 0

	switch result.Outcome {
	case runner.Succeeded:
		if _, canUndo := node.Step.Impl.(model.Undoer); canUndo {
			rx.PushUndo(reactor.UndoEntry{
				StepName: result.Name,
				StepRef:  result.Ref,
				Step:     *node.Step,
				Value:    result.Value,
				Args:     result.Args,
				Context:  result.Context,
			})
		}

		keep := hasDependent || rx.Return == result.Name || referencedByName(result.NewSteps, result.Name)
		if keep {
			rx.IntermediateResults[result.Name] = result.Value
		}

		rx.Steps = append(rx.Steps, result.NewSteps...)
		rx.Graph.RemoveVertex(result.Ref)

	case runner.HaltedOutcome:
		rx.IntermediateResults[result.Name] = result.Value
		rx.Graph.RemoveVertex(result.Ref)

	case runner.Failed:
		log.Warn(ctx, "step failed", "step_name", result.Name, "error", result.Err)
		agg.Add(result.Err)
		rx.Graph.RemoveVertex(result.Ref)
	}
}

func collectDependentRefs(g *plan.Graph, ref model.Ref) []model.Ref {
	node, ok := g.Node(ref)
	if !ok {
		return nil
	}
	var out []model.Ref
	for dep := range node.Dependents() {
		out = append(out, dep)
	}
	return out
}

func referencedByName(newSteps []model.StepDef, name string) bool {
	for _, step := range newSteps {
		for _, arg := range step.Arguments {
			if arg.Source.Kind == model.ResultRef && arg.Source.Name == name {
				return true
			}
		}
	}
	return false
}

func haltReactor(rx *reactor.Reactor, sup *runner.AsyncSupervisor, opts Options) Result {
	haltTimeout := opts.HaltTimeout
	if haltTimeout <= 0 {
		haltTimeout = 5 * time.Second
	}
	sup.DrainOnShutdown(haltTimeout)
	rx.LifecycleState = reactor.Halted
	rx.Context = rx.Middleware.FoldHalt(rx.Context)
	return Result{Halted: rx}
}

func failReactor(ctx context.Context, rx *reactor.Reactor, sup *runner.AsyncSupervisor, opts Options, agg *reactorerrors.Aggregate, log ports.Logger) Result {
	haltTimeout := opts.HaltTimeout
	if haltTimeout <= 0 {
		haltTimeout = 5 * time.Second
	}
	sup.DrainOnShutdown(haltTimeout)

	entries := make([]runner.UndoEntry, 0, len(rx.Undo))
	for _, e := range rx.Undo {
		entries = append(entries, runner.UndoEntry{
			StepName: e.StepName,
			StepRef:  e.StepRef,
			Impl:     e.Step.Impl,
			Value:    e.Value,
			Args:     e.Args,
			Context:  e.Context,
		})
	}
	undoErrs := runner.Walk(ctx, entries, rx.Middleware, rx.ID)
	rx.Undo = nil
	for _, err := range undoErrs.Errors() {
		agg.Add(err)
	}

	rx.LifecycleState = reactor.Failed
	err := error(agg)
	err = rx.Middleware.FoldError(err)
	return Result{Err: err}
}

type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...interface{}) {}
func (noopLogger) Info(context.Context, string, ...interface{}) {}
func (noopLogger) Warn(context.Context, string, ...interface{}) {}
func (noopLogger) Error(context.Context, string, ...interface{}) {}
func (noopLogger) With(...interface{}) ports.Logger {
	return noopLogger{}
}
