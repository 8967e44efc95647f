package model

import "sync/atomic"

var refCounter uint64

// Ref is an opaque unique handle identifying a step vertex. Two StepDefs may
// legitimately share a Name (controlled dynamic recursion); Ref never
// collides within a process.
type Ref uint64

// NewRef mints a fresh, process-unique Ref.
func NewRef() Ref {
	return Ref(atomic.AddUint64(&refCounter, 1))
}

// AsyncDecider evaluates whether a step should run asynchronously based on
// its options. Used when a step's async behavior is not a fixed boolean.
type AsyncDecider func(options map[string]interface{}) bool

// Async describes a step's synchronous/asynchronous dispatch policy: either
// a fixed flag or a predicate over the step's options.
type Async struct {
	Flag    bool
	Decider AsyncDecider
}

// AsyncAlways is the fixed-true dispatch policy.
var AsyncAlways = Async{Flag: true}

// AsyncNever is the fixed-false dispatch policy.
var AsyncNever = Async{Flag: false}

// Decide resolves the policy against a step's options. A nil Decider falls
// back to Flag.
func (a Async) Decide(options map[string]interface{}) bool {
	if a.Decider != nil {
		return a.Decider(options)
	}
	return a.Flag
}

// InfiniteRetries marks a step as retryable without bound.
const InfiniteRetries = -1

// StepDef is a step definition as declared by the caller, exclusively owned
// by the Reactor's pending queue until planned, at which point it becomes a
// graph vertex keyed by Ref.
type StepDef struct {
	Name      string
	Ref       Ref
	Arguments []Argument
	Impl      Step
	Options   map[string]interface{}
	Async     Async
	// MaxRetries is a non-negative retry budget, or InfiniteRetries.
	MaxRetries int
	// ContextOverlay is merged on top of the reactor context for this step
	// only.
	ContextOverlay map[string]interface{}
	// Transform mutates the whole resolved argument map before Run is
	// invoked.
	Transform Transform
}

// Capabilities records which optional behaviors a Step implementation
// exposes, as discovered by DiscoverCapabilities via interface assertion
// (a capability query, not runtime reflection on method names).
type Capabilities struct {
	CanCompensate bool
	CanUndo       bool
	CanBackoff    bool
}

// DiscoverCapabilities inspects impl for the optional Compensator, Undoer,
// and Backoffer interfaces.
func DiscoverCapabilities(impl Step) Capabilities {
	_, compensate := impl.(Compensator)
	_, undo := impl.(Undoer)
	_, backoff := impl.(Backoffer)
	return Capabilities{CanCompensate: compensate, CanUndo: undo, CanBackoff: backoff}
}
