package model

import "context"

// Step is the one required capability every step implementation must
// satisfy. Compensate, Undo, and Backoff are optional and discovered by
// interface assertion (see DiscoverCapabilities).
type Step interface {
	Run(ctx context.Context, args map[string]interface{}, reactorCtx map[string]interface{}) RunResult
}

// Compensator gives a step the chance to turn a failure into a retry or a
// continuation before the engine begins rollback.
type Compensator interface {
	Compensate(ctx context.Context, err error, args map[string]interface{}, reactorCtx map[string]interface{}) CompensateResult
}

// Undoer lets a step reverse a previously successful run during rollback.
type Undoer interface {
	Undo(ctx context.Context, value interface{}, args map[string]interface{}, reactorCtx map[string]interface{}) UndoResult
}

// Backoffer produces a delay before the next retry attempt. attemptNo is
// 1-based; errOrValue is the Retry reason (nil when none was given).
type Backoffer interface {
	Backoff(attemptNo int, errOrValue interface{}, args map[string]interface{}, reactorCtx map[string]interface{}) Duration
}

// Duration is a thin alias so step implementations don't need to import
// time just to implement Backoffer; it is an int64 nanosecond count that
// converts to and from time.Duration with an explicit conversion.
type Duration = int64 // nanoseconds

// RunOutcome tags the closed set of results a Run invocation can produce.
type RunOutcome int

const (
	RunSucceeded RunOutcome = iota
	RunRetried
	RunHalted
	RunFailed
)

// RunResult is the closed sum type returned by Step.Run.
type RunResult struct {
	Outcome RunOutcome

	// Value holds the produced value for RunSucceeded and RunHalted.
	Value interface{}
	// NewSteps holds steps injected alongside a RunSucceeded outcome, to be
	// appended to the reactor's pending queue and planned on the next
	// iteration.
	NewSteps []StepDef

	// RetryReason optionally explains a RunRetried outcome; held for the
	// final error if retries are exhausted.
	RetryReason error

	// Err holds the failure reason for RunFailed.
	Err error
}

// Ok reports a bare success.
func Ok(value interface{}) RunResult {
	return RunResult{Outcome: RunSucceeded, Value: value}
}

// OkWithSteps reports success while injecting further steps to be planned.
func OkWithSteps(value interface{}, newSteps []StepDef) RunResult {
	return RunResult{Outcome: RunSucceeded, Value: value, NewSteps: newSteps}
}

// Retry re-enqueues the step with no recorded reason.
func Retry() RunResult {
	return RunResult{Outcome: RunRetried}
}

// RetryBecause re-enqueues the step, recording reason for a possible
// RetriesExceededError.
func RetryBecause(reason error) RunResult {
	return RunResult{Outcome: RunRetried, RetryReason: reason}
}

// Halt cooperatively pauses the reactor, recording value as this step's
// intermediate result.
func Halt(value interface{}) RunResult {
	return RunResult{Outcome: RunHalted, Value: value}
}

// Err reports step failure.
func Err(err error) RunResult {
	return RunResult{Outcome: RunFailed, Err: err}
}

// CompensateOutcome tags the closed set of results Compensate can produce.
type CompensateOutcome int

const (
	CompensateContinued CompensateOutcome = iota
	CompensateRetried
	CompensateAcked
	CompensateFailed
)

// CompensateResult is the closed sum type returned by Compensator.Compensate.
type CompensateResult struct {
	Outcome CompensateOutcome

	// Value holds the substitute success value for CompensateContinued.
	Value interface{}
	// RetryReason optionally explains a CompensateRetried outcome.
	RetryReason error
	// Err holds the superseding failure for CompensateFailed.
	Err error
}

// CompensateContinue treats compensation as if Run had returned Ok(value).
func CompensateContinue(value interface{}) CompensateResult {
	return CompensateResult{Outcome: CompensateContinued, Value: value}
}

// CompensateRetry re-enqueues the step with no recorded reason.
func CompensateRetry() CompensateResult {
	return CompensateResult{Outcome: CompensateRetried}
}

// CompensateRetryBecause re-enqueues the step, recording a reason.
func CompensateRetryBecause(reason error) CompensateResult {
	return CompensateResult{Outcome: CompensateRetried, RetryReason: reason}
}

// CompensateAck acknowledges compensation; the original error is surfaced
// and rollback begins.
func CompensateAck() CompensateResult {
	return CompensateResult{Outcome: CompensateAcked}
}

// CompensateErr reports that compensation itself failed; err supersedes the
// original error.
func CompensateErr(err error) CompensateResult {
	return CompensateResult{Outcome: CompensateFailed, Err: err}
}

// UndoOutcome tags the closed set of results Undo can produce.
type UndoOutcome int

const (
	UndoSucceeded UndoOutcome = iota
	UndoRetried
	UndoFailed
)

// UndoResult is the closed sum type returned by Undoer.Undo.
type UndoResult struct {
	Outcome UndoOutcome

	RetryReason error
	Err         error
}

// UndoOk reports successful rollback of a single entry.
func UndoOk() UndoResult {
	return UndoResult{Outcome: UndoSucceeded}
}

// UndoRetry asks the engine to retry this undo (bounded, see runner).
func UndoRetry() UndoResult {
	return UndoResult{Outcome: UndoRetried}
}

// UndoRetryBecause asks the engine to retry this undo, recording a reason.
func UndoRetryBecause(reason error) UndoResult {
	return UndoResult{Outcome: UndoRetried, RetryReason: reason}
}

// UndoErr reports a terminal undo failure; the rollback walk continues.
func UndoErr(err error) UndoResult {
	return UndoResult{Outcome: UndoFailed, Err: err}
}
