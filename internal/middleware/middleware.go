// Package middleware implements Reactor's event fanout: an ordered list of
// adapters invoked by simple fold, not a pub/sub registry. A hook opts into
// whichever lifecycle callbacks it cares about by implementing the matching
// optional interface; the engine discovers that capability the same way it
// discovers a step's Compensate/Undo/Backoff (type assertion).
package middleware

import (
	"time"

	"github.com/alexisbeaulieu97/reactor/internal/model"
)

// Hook is the empty marker every middleware adapter satisfies. Its actual
// behavior comes from implementing one or more of the interfaces below.
type Hook interface{}

// InitHook runs when a reactor begins (or resumes) execution. It may return
// a replacement context map; subsequent hooks see the updated map.
type InitHook interface {
	OnInit(ctx map[string]interface{}) map[string]interface{}
}

// HaltHook runs when a reactor transitions to Halted. Like OnInit it may
// replace the context.
type HaltHook interface {
	OnHalt(ctx map[string]interface{}) map[string]interface{}
}

// CompleteHook runs once, with the reactor's terminal value, when it
// transitions to Successful. It may replace the value seen by later hooks.
type CompleteHook interface {
	OnComplete(value interface{}) interface{}
}

// ErrorHook runs once the reactor transitions to Failed. It may replace the
// error surfaced to the caller.
type ErrorHook interface {
	OnError(err error) error
}

// StepEventKind enumerates the purely observational per-step events. These
// never mutate anything; a hook only watches.
type StepEventKind int

const (
	RunStart StepEventKind = iota
	RunComplete
	RunError
	RunRetry
	RunHalt
	CompensateStart
	CompensateStop
	UndoStart
	UndoStop
	ProcessStart
	ProcessStop
)

// StepEvent is the metadata/measurement pair fanned out for observational
// events: metadata names the step and reactor, measurements give timing.
type StepEvent struct {
	Kind      StepEventKind
	ReactorID string
	StepName  string
	StepRef   model.Ref
	Duration  time.Duration
	Err       error
}

// StepObserver is the optional interface a hook implements to watch
// per-step events.
type StepObserver interface {
	OnStepEvent(event StepEvent)
}

// Chain is an ordered list of hooks, folded in registration order.
type Chain []Hook

// FoldInit runs every InitHook in order, threading the (possibly replaced)
// context through each.
func (c Chain) FoldInit(ctx map[string]interface{}) map[string]interface{} {
	for _, hook := range c {
		if h, ok := hook.(InitHook); ok {
			ctx = h.OnInit(ctx)
		}
	}
	return ctx
}

// FoldHalt runs every HaltHook in order.
func (c Chain) FoldHalt(ctx map[string]interface{}) map[string]interface{} {
	for _, hook := range c {
		if h, ok := hook.(HaltHook); ok {
			ctx = h.OnHalt(ctx)
		}
	}
	return ctx
}

// FoldComplete runs every CompleteHook in order, threading the (possibly
// replaced) value through each.
func (c Chain) FoldComplete(value interface{}) interface{} {
	for _, hook := range c {
		if h, ok := hook.(CompleteHook); ok {
			value = h.OnComplete(value)
		}
	}
	return value
}

// FoldError runs every ErrorHook in order, threading the (possibly
// replaced) error through each.
func (c Chain) FoldError(err error) error {
	for _, hook := range c {
		if h, ok := hook.(ErrorHook); ok {
			err = h.OnError(err)
		}
	}
	return err
}

// Observe fans a step event out to every hook that implements StepObserver.
// Observers never mutate state and are invoked best-effort in order.
func (c Chain) Observe(event StepEvent) {
	for _, hook := range c {
		if h, ok := hook.(StepObserver); ok {
			h.OnStepEvent(event)
		}
	}
}
