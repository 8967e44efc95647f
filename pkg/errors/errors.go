// Package errors defines Reactor's tagged error taxonomy. Callers pattern
// match on the concrete type returned by errors.As rather than on string
// content, so the kinds are never renamed without a very good reason.
package errors

import (
	"fmt"
	"strings"
)

// PlanError reports a problem discovered while folding steps into the
// dependency graph: an unknown dependency, a duplicate step name, or a
// cycle.
type PlanError struct {
	StepName string
	Reason   string
	Err      error
}

// NewPlanError constructs a PlanError for the named step.
func NewPlanError(stepName, reason string, err error) error {
	return &PlanError{StepName: stepName, Reason: reason, Err: err}
}

func (e *PlanError) Error() string {
	if e.StepName == "" {
		return fmt.Sprintf("plan error: %s", e.Reason)
	}
	return fmt.Sprintf("plan error: step %q: %s", e.StepName, e.Reason)
}

// Unwrap exposes the underlying error, if any.
func (e *PlanError) Unwrap() error { return e.Err }

// Is lets errors.Is match any PlanError regardless of field values.
func (e *PlanError) Is(target error) bool {
	_, ok := target.(*PlanError)
	return ok
}

// MissingInputError reports an InputRef template whose input was never
// supplied to the reactor.
type MissingInputError struct {
	InputName string
}

// NewMissingInputError constructs a MissingInputError.
func NewMissingInputError(inputName string) error {
	return &MissingInputError{InputName: inputName}
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input %q", e.InputName)
}

// Is lets errors.Is match any MissingInputError regardless of field values.
func (e *MissingInputError) Is(target error) bool {
	_, ok := target.(*MissingInputError)
	return ok
}

// MissingResultError reports a ResultRef template pointing at a step whose
// result was never produced (not yet run, or not retained).
type MissingResultError struct {
	StepName string
}

// NewMissingResultError constructs a MissingResultError.
func NewMissingResultError(stepName string) error {
	return &MissingResultError{StepName: stepName}
}

func (e *MissingResultError) Error() string {
	return fmt.Sprintf("missing result for step %q", e.StepName)
}

// Is lets errors.Is match any MissingResultError regardless of field values.
func (e *MissingResultError) Is(target error) bool {
	_, ok := target.(*MissingResultError)
	return ok
}

// ArgumentSubpathError reports a failed sub_path traversal while resolving a
// template: either the key was absent at that point in the path, or the
// intermediate value was not a container the resolver knows how to index.
type ArgumentSubpathError struct {
	Path   []string
	Key    string
	Kind   string // classification of the offending intermediate value
	Reason string
}

// NewArgumentSubpathError constructs an ArgumentSubpathError.
func NewArgumentSubpathError(path []string, key, kind, reason string) error {
	return &ArgumentSubpathError{Path: append([]string(nil), path...), Key: key, Kind: kind, Reason: reason}
}

func (e *ArgumentSubpathError) Error() string {
	return fmt.Sprintf("value at path %s is %s: %s (key %q)",
		strings.Join(e.Path, "."), e.Kind, e.Reason, e.Key)
}

// Is lets errors.Is match any ArgumentSubpathError regardless of field values.
func (e *ArgumentSubpathError) Is(target error) bool {
	_, ok := target.(*ArgumentSubpathError)
	return ok
}

// RunStepError wraps a step's own error reason with the step's name.
type RunStepError struct {
	StepName string
	Err      error
}

// NewRunStepError constructs a RunStepError.
func NewRunStepError(stepName string, err error) error {
	return &RunStepError{StepName: stepName, Err: err}
}

func (e *RunStepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.StepName, e.Err)
}

// Unwrap exposes the step's own error.
func (e *RunStepError) Unwrap() error { return e.Err }

// Is lets errors.Is match any RunStepError regardless of field values.
func (e *RunStepError) Is(target error) bool {
	_, ok := target.(*RunStepError)
	return ok
}

// CompensateStepError reports that a step's compensate callback itself
// raised or returned an error, superseding the original failure.
type CompensateStepError struct {
	StepName string
	Original error
	Err      error
}

// NewCompensateStepError constructs a CompensateStepError.
func NewCompensateStepError(stepName string, original, err error) error {
	return &CompensateStepError{StepName: stepName, Original: original, Err: err}
}

func (e *CompensateStepError) Error() string {
	return fmt.Sprintf("compensate failed for step %q: %v (original: %v)", e.StepName, e.Err, e.Original)
}

// Unwrap exposes the compensate callback's own error.
func (e *CompensateStepError) Unwrap() error { return e.Err }

// Is lets errors.Is match any CompensateStepError regardless of field values.
func (e *CompensateStepError) Is(target error) bool {
	_, ok := target.(*CompensateStepError)
	return ok
}

// UndoStepError collects a single step's undo failure. It never stops the
// rollback walk; the engine only accumulates it into the final aggregate.
type UndoStepError struct {
	StepName string
	Err      error
}

// NewUndoStepError constructs an UndoStepError.
func NewUndoStepError(stepName string, err error) error {
	return &UndoStepError{StepName: stepName, Err: err}
}

func (e *UndoStepError) Error() string {
	return fmt.Sprintf("undo failed for step %q: %v", e.StepName, e.Err)
}

// Unwrap exposes the underlying undo error.
func (e *UndoStepError) Unwrap() error { return e.Err }

// Is lets errors.Is match any UndoStepError regardless of field values.
func (e *UndoStepError) Is(target error) bool {
	_, ok := target.(*UndoStepError)
	return ok
}

// UndoRetriesExceededError reports that a single undo entry exhausted its
// bounded retry budget (5 attempts) without succeeding.
type UndoRetriesExceededError struct {
	StepName string
	Attempts int
	Err      error
}

// NewUndoRetriesExceededError constructs an UndoRetriesExceededError.
func NewUndoRetriesExceededError(stepName string, attempts int, err error) error {
	return &UndoRetriesExceededError{StepName: stepName, Attempts: attempts, Err: err}
}

func (e *UndoRetriesExceededError) Error() string {
	return fmt.Sprintf("undo retries exceeded for step %q after %d attempts: %v", e.StepName, e.Attempts, e.Err)
}

// Unwrap exposes the last underlying undo error.
func (e *UndoRetriesExceededError) Unwrap() error { return e.Err }

// Is lets errors.Is match any UndoRetriesExceededError regardless of field values.
func (e *UndoRetriesExceededError) Is(target error) bool {
	_, ok := target.(*UndoRetriesExceededError)
	return ok
}

// RetriesExceededError reports that a step's retry budget (max_retries) was
// exhausted. It carries the last underlying reason, if any was given.
type RetriesExceededError struct {
	StepName   string
	RetryCount int
	LastErr    error
}

// NewRetriesExceededError constructs a RetriesExceededError.
func NewRetriesExceededError(stepName string, retryCount int, lastErr error) error {
	return &RetriesExceededError{StepName: stepName, RetryCount: retryCount, LastErr: lastErr}
}

func (e *RetriesExceededError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("step %q exceeded retry count %d", e.StepName, e.RetryCount)
	}
	return fmt.Sprintf("step %q exceeded retry count %d: %v", e.StepName, e.RetryCount, e.LastErr)
}

// Unwrap exposes the last retry reason, if any.
func (e *RetriesExceededError) Unwrap() error { return e.LastErr }

// Is lets errors.Is match any RetriesExceededError regardless of field values.
func (e *RetriesExceededError) Is(target error) bool {
	_, ok := target.(*RetriesExceededError)
	return ok
}

// ForcedFailureError is produced by bundled "fail" style steps. It is
// structurally identical to a RunStepError but carries the user-supplied
// message and the arguments that produced it, so callers can distinguish an
// intentional failure from an implementation bug.
type ForcedFailureError struct {
	StepName  string
	Message   string
	Arguments map[string]interface{}
}

// NewForcedFailureError constructs a ForcedFailureError.
func NewForcedFailureError(stepName, message string, arguments map[string]interface{}) error {
	return &ForcedFailureError{StepName: stepName, Message: message, Arguments: arguments}
}

func (e *ForcedFailureError) Error() string {
	return fmt.Sprintf("step %q forced failure: %s", e.StepName, e.Message)
}

// Is lets errors.Is match any ForcedFailureError regardless of field values.
func (e *ForcedFailureError) Is(target error) bool {
	_, ok := target.(*ForcedFailureError)
	return ok
}

// ComposeError reports that a nested reactor could not be composed into a
// parent reactor, e.g. recursion was detected without an explicit recurse
// step breaking the cycle.
type ComposeError struct {
	ReactorID string
	Reason    string
}

// NewComposeError constructs a ComposeError.
func NewComposeError(reactorID, reason string) error {
	return &ComposeError{ReactorID: reactorID, Reason: reason}
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("cannot compose reactor %q: %s", e.ReactorID, e.Reason)
}

// Is lets errors.Is match any ComposeError regardless of field values.
func (e *ComposeError) Is(target error) bool {
	_, ok := target.(*ComposeError)
	return ok
}

// InvariantError marks a condition the engine believes is unreachable. Its
// presence at runtime is a bug in the engine, not in user code.
type InvariantError struct {
	Detail string
}

// NewInvariantError constructs an InvariantError.
func NewInvariantError(detail string) error {
	return &InvariantError{Detail: detail}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Detail)
}

// Is lets errors.Is match any InvariantError regardless of field values.
func (e *InvariantError) Is(target error) bool {
	_, ok := target.(*InvariantError)
	return ok
}

// Aggregate collects every error produced during a single reactor run: step
// failures and the undo failures picked up while rolling them back. Order is
// completion order, oldest first.
type Aggregate struct {
	errs []error
}

// NewAggregate builds an Aggregate from zero or more errors. Nil errors are
// dropped.
func NewAggregate(errs ...error) *Aggregate {
	a := &Aggregate{}
	for _, err := range errs {
		a.Add(err)
	}
	return a
}

// Add appends a non-nil error to the aggregate.
func (a *Aggregate) Add(err error) {
	if err == nil {
		return
	}
	a.errs = append(a.errs, err)
}

// Empty reports whether the aggregate has accumulated no errors.
func (a *Aggregate) Empty() bool {
	return a == nil || len(a.errs) == 0
}

// Errors returns the accumulated errors in completion order.
func (a *Aggregate) Errors() []error {
	if a == nil {
		return nil
	}
	return append([]error(nil), a.errs...)
}

// Unwrap exposes the contained errors for errors.Is / errors.As traversal
// (multi-error unwrapping, supported since Go 1.20).
func (a *Aggregate) Unwrap() []error {
	if a == nil {
		return nil
	}
	return a.errs
}

func (a *Aggregate) Error() string {
	if a.Empty() {
		return "no errors"
	}
	if len(a.errs) == 1 {
		return a.errs[0].Error()
	}
	parts := make([]string, len(a.errs))
	for i, err := range a.errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d errors occurred:\n\t* %s", len(a.errs), strings.Join(parts, "\n\t* "))
}

// FindErrors returns every contained error for which match returns true,
// descending into any nested Aggregate.
func (a *Aggregate) FindErrors(match func(error) bool) []error {
	if a == nil {
		return nil
	}
	var found []error
	for _, err := range a.errs {
		if match(err) {
			found = append(found, err)
		}
		if nested, ok := err.(*Aggregate); ok {
			found = append(found, nested.FindErrors(match)...)
		}
	}
	return found
}
