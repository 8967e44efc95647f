// Package runner implements the step runner (C9) shared by the sync and
// async dispatch paths, plus the async task supervisor (C7) and the undo
// walk invoked by the executor on rollback.
package runner

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/plan"
	"github.com/alexisbeaulieu97/reactor/internal/resolve"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// Outcome tags the closed set of terminal results RunStep can produce.
// Retry is handled internally by the loop and never escapes as an Outcome.
type Outcome int

const (
	Succeeded Outcome = iota
	HaltedOutcome
	Failed
)

// StepResult is what both the sync and async paths hand back to the
// executor: a single step's terminal outcome after any internal retry loop.
type StepResult struct {
	Ref      model.Ref
	Name     string
	Outcome  Outcome
	Value    interface{}
	NewSteps []model.StepDef
	Err      error
	Retries  int

	// Args and Context are the last attempt's resolved arguments and
	// effective context, kept so a later undo call can be invoked with the
	// same shape of inputs the successful run used.
	Args    map[string]interface{}
	Context map[string]interface{}
}

// Keys merged into the effective per-step context (§4.7).
const (
	CtxCurrentStep      = "current_step"
	CtxConcurrencyKey   = "concurrency_key"
	CtxCurrentTry       = "current_try"
	CtxRetriesRemaining = "retries_remaining"
)

// PrepareStep resolves node's arguments and builds its effective base
// context (overlay merged over reactorCtx, plus the step/concurrency-key
// context keys). It reads reactorCtx and results, so it must only ever be
// called from the executor's single-threaded loop, never from a dispatched
// worker goroutine (§5: reactor state is never shared with workers). The
// maps it returns are fresh copies owned by the caller, safe to hand to a
// goroutine afterward and read concurrently with further loop mutation of
// reactorCtx/results.
func PrepareStep(node *plan.Node, reactorCtx map[string]interface{}, results map[string]interface{}, concurrencyKey string) (args map[string]interface{}, baseCtx map[string]interface{}, err error) {
	step := node.Step

	args, err = resolve.Arguments(step.Arguments, reactorCtx, results)
	if err != nil {
		return nil, nil, err
	}
	if step.Transform != nil {
		transformed, terr := step.Transform(args)
		if terr != nil {
			return nil, nil, terr
		}
		m, ok := transformed.(map[string]interface{})
		if !ok {
			return nil, nil, reactorerrors.NewInvariantError("step transform did not return an argument map")
		}
		args = m
	}

	baseCtx = mergeOverlay(step.ContextOverlay, reactorCtx)
	baseCtx[CtxCurrentStep] = step.Name
	baseCtx[CtxConcurrencyKey] = concurrencyKey
	return args, baseCtx, nil
}

// RunStep executes node's step to completion from an already-resolved
// args/baseCtx snapshot (see PrepareStep): it invokes Run and loops on
// Retry (honoring max_retries and an optional backoff) or Compensate (on
// Err) until a terminal outcome is reached. It touches only its own
// arguments, never reactorCtx/results directly, so it is safe to run
// concurrently with the executor loop in a dispatched goroutine.
func RunStep(ctx context.Context, node *plan.Node, args map[string]interface{}, baseCtx map[string]interface{}, retries int, hooks middleware.Chain, reactorID string) StepResult {
	step := node.Step
	attempt := retries

	for {
		effectiveCtx := baseCtx
		effectiveCtx[CtxCurrentTry] = attempt + 1
		effectiveCtx[CtxRetriesRemaining] = remaining(step.MaxRetries, attempt)

		hooks.Observe(middleware.StepEvent{Kind: middleware.RunStart, ReactorID: reactorID, StepName: step.Name, StepRef: node.Ref})
		start := time.Now()
		result := step.Impl.Run(ctx, args, effectiveCtx)

		switch result.Outcome {
		case model.RunSucceeded:
			hooks.Observe(middleware.StepEvent{Kind: middleware.RunComplete, ReactorID: reactorID, StepName: step.Name, StepRef: node.Ref, Duration: time.Since(start)})
			return StepResult{Ref: node.Ref, Name: step.Name, Outcome: Succeeded, Value: result.Value, NewSteps: result.NewSteps, Retries: attempt, Args: args, Context: effectiveCtx}

		case model.RunHalted:
			hooks.Observe(middleware.StepEvent{Kind: middleware.RunHalt, ReactorID: reactorID, StepName: step.Name, StepRef: node.Ref, Duration: time.Since(start)})
			return StepResult{Ref: node.Ref, Name: step.Name, Outcome: HaltedOutcome, Value: result.Value, Retries: attempt, Args: args, Context: effectiveCtx}

		case model.RunRetried:
			hooks.Observe(middleware.StepEvent{Kind: middleware.RunRetry, ReactorID: reactorID, StepName: step.Name, StepRef: node.Ref, Duration: time.Since(start)})
			attempt++
			if exceeded(step.MaxRetries, attempt) {
				return StepResult{Ref: node.Ref, Name: step.Name, Outcome: Failed,
					Err:     reactorerrors.NewRetriesExceededError(step.Name, attempt-1, result.RetryReason),
					Retries: attempt}
			}
			sleepBackoff(step, attempt, result.RetryReason, args, effectiveCtx)
			continue

		case model.RunFailed:
			hooks.Observe(middleware.StepEvent{Kind: middleware.RunError, ReactorID: reactorID, StepName: step.Name, StepRef: node.Ref, Duration: time.Since(start), Err: result.Err})
			outcome, retryAgain := compensate(ctx, step, result.Err, args, effectiveCtx, node.Ref, hooks, reactorID)
			if retryAgain {
				attempt++
				if exceeded(step.MaxRetries, attempt) {
					return StepResult{Ref: node.Ref, Name: step.Name, Outcome: Failed,
						Err:     reactorerrors.NewRetriesExceededError(step.Name, attempt-1, outcome.Err),
						Retries: attempt}
				}
				continue
			}
			outcome.Retries = attempt
			if outcome.Outcome == Succeeded {
				outcome.Args = args
				outcome.Context = effectiveCtx
			}
			return outcome
		}
	}
}

// compensate invokes the step's Compensate capability, if any, translating
// its result into either a terminal StepResult or a request to retry.
func compensate(ctx context.Context, step *model.StepDef, original error, args map[string]interface{},
	effectiveCtx map[string]interface{}, ref model.Ref, hooks middleware.Chain, reactorID string) (StepResult, bool) {

	compensator, ok := step.Impl.(model.Compensator)
	if !ok {
		return StepResult{Ref: ref, Name: step.Name, Outcome: Failed, Err: reactorerrors.NewRunStepError(step.Name, original)}, false
	}

	hooks.Observe(middleware.StepEvent{Kind: middleware.CompensateStart, ReactorID: reactorID, StepName: step.Name, StepRef: ref})
	result := compensator.Compensate(ctx, original, args, effectiveCtx)
	hooks.Observe(middleware.StepEvent{Kind: middleware.CompensateStop, ReactorID: reactorID, StepName: step.Name, StepRef: ref})

	switch result.Outcome {
	case model.CompensateContinued:
		return StepResult{Ref: ref, Name: step.Name, Outcome: Succeeded, Value: result.Value}, false
	case model.CompensateRetried:
		return StepResult{Err: result.RetryReason}, true
	case model.CompensateAcked:
		return StepResult{Ref: ref, Name: step.Name, Outcome: Failed, Err: reactorerrors.NewRunStepError(step.Name, original)}, false
	case model.CompensateFailed:
		return StepResult{Ref: ref, Name: step.Name, Outcome: Failed, Err: reactorerrors.NewCompensateStepError(step.Name, original, result.Err)}, false
	default:
		return StepResult{Ref: ref, Name: step.Name, Outcome: Failed, Err: reactorerrors.NewRunStepError(step.Name, original)}, false
	}
}

func exceeded(maxRetries, attempt int) bool {
	return maxRetries != model.InfiniteRetries && attempt > maxRetries
}

func remaining(maxRetries, attempt int) int {
	if maxRetries == model.InfiniteRetries {
		return -1
	}
	left := maxRetries - attempt
	if left < 0 {
		return 0
	}
	return left
}

func sleepBackoff(step *model.StepDef, attempt int, reason error, args, effectiveCtx map[string]interface{}) {
	backoffer, ok := step.Impl.(model.Backoffer)
	if !ok {
		return
	}
	var errOrValue interface{} = reason
	d := backoffer.Backoff(attempt, errOrValue, args, effectiveCtx)
	if d > 0 {
		time.Sleep(time.Duration(d))
	}
}

func mergeOverlay(overlay, base map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
