// Package reactor defines the Reactor value (C3): the durable snapshot of a
// workflow's inputs, pending steps, planned graph, intermediate results, and
// undo stack that the executor loop (internal/engine) drives through its
// lifecycle states.
package reactor

import (
	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/plan"
)

// State is the reactor's lifecycle: only Pending and Halted may re-enter
// Executing via a call to run.
type State int

const (
	Pending State = iota
	Executing
	Halted
	Failed
	Successful
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Executing:
		return "executing"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	case Successful:
		return "successful"
	default:
		return "unknown"
	}
}

// UndoEntry is one frame of the undo stack: the step and the value it
// produced, pushed only for steps with undo capability, popped LIFO during
// rollback.
type UndoEntry struct {
	StepName string
	StepRef  model.Ref
	Step     model.StepDef
	Value    interface{}

	// Args and Context are the arguments and effective context the step
	// last ran with, replayed into Undo so it sees the same shape of
	// inputs the successful run did.
	Args    map[string]interface{}
	Context map[string]interface{}
}

// Reactor is the workflow value: constructed once, then carried through
// pure state transitions by the executor loop. Plan mutates incrementally;
// IntermediateResults is append-only within a single run.
type Reactor struct {
	ID string

	// Inputs is the set of declared input names; InputValues holds the
	// caller-supplied values for the current run, stashed under
	// model.PrivateInputsKey in Context by the executor at run start.
	Inputs      map[string]struct{}
	InputValues map[string]interface{}

	// Context is user-supplied context, plus the private inputs key the
	// executor maintains during a run.
	Context map[string]interface{}

	// Steps is the queue of not-yet-planned step definitions.
	Steps []model.StepDef

	// Graph is the planned DAG over steps planned so far.
	Graph *plan.Graph

	// IntermediateResults maps step name to its produced value.
	IntermediateResults map[string]interface{}

	// Undo is the LIFO stack of undoable completed steps, newest last.
	Undo []UndoEntry

	// Return names the step whose result is the reactor's final value.
	Return string

	// LifecycleState is the current state machine position.
	LifecycleState State

	// Middleware is the ordered adapter chain fanned out by the executor.
	Middleware middleware.Chain
}

// New creates an empty, Pending reactor identified by id.
func New(id string) *Reactor {
	return &Reactor{
		ID:                  id,
		Inputs:              make(map[string]struct{}),
		Context:             make(map[string]interface{}),
		Graph:               plan.NewGraph(),
		IntermediateResults: make(map[string]interface{}),
	}
}

// Clone produces a shallow copy: maps and slices are copied one level deep,
// so writes to the clone's maps and slices do not reach the original. The
// Graph is not copied; the clone shares r's *plan.Graph, so planning or
// running the clone also changes the original's graph.
func (r *Reactor) Clone() *Reactor {
	clone := &Reactor{
		ID:             r.ID,
		Return:         r.Return,
		LifecycleState: r.LifecycleState,
	}

	clone.Inputs = make(map[string]struct{}, len(r.Inputs))
	for k, v := range r.Inputs {
		clone.Inputs[k] = v
	}

	clone.InputValues = make(map[string]interface{}, len(r.InputValues))
	for k, v := range r.InputValues {
		clone.InputValues[k] = v
	}

	clone.Context = make(map[string]interface{}, len(r.Context))
	for k, v := range r.Context {
		clone.Context[k] = v
	}

	clone.Steps = append([]model.StepDef(nil), r.Steps...)

	if r.Graph != nil {
		clone.Graph = r.Graph
	} else {
		clone.Graph = plan.NewGraph()
	}

	clone.IntermediateResults = make(map[string]interface{}, len(r.IntermediateResults))
	for k, v := range r.IntermediateResults {
		clone.IntermediateResults[k] = v
	}

	clone.Undo = append([]UndoEntry(nil), r.Undo...)
	clone.Middleware = append(middleware.Chain(nil), r.Middleware...)

	return clone
}

// CanRun reports whether the reactor may enter Executing: only a fresh
// (Pending) or previously-halted reactor may be run.
func (r *Reactor) CanRun() bool {
	return r.LifecycleState == Pending || r.LifecycleState == Halted
}

// PushUndo records a completed undoable step onto the stack.
func (r *Reactor) PushUndo(entry UndoEntry) {
	r.Undo = append(r.Undo, entry)
}

// PopUndo removes and returns the most recently pushed undo entry.
func (r *Reactor) PopUndo() (UndoEntry, bool) {
	if len(r.Undo) == 0 {
		return UndoEntry{}, false
	}
	last := len(r.Undo) - 1
	entry := r.Undo[last]
	r.Undo = r.Undo[:last]
	return entry, true
}
