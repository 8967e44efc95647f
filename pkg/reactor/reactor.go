// Package reactor is the public surface third-party callers build against:
// the Builder API for constructing a workflow and the Run entrypoint for
// executing it. Everything here is a thin, validating wrapper over the
// internal engine; the behavior contract a step must satisfy lives in
// Step, Compensator, Undoer, and Backoffer.
package reactor

import (
	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	internalreactor "github.com/alexisbeaulieu97/reactor/internal/reactor"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// Reactor is the workflow value under construction or mid-run.
type Reactor = internalreactor.Reactor

// Step is the one capability every step implementation must satisfy.
type Step = model.Step

// Compensator, Undoer, and Backoffer are the optional step capabilities,
// discovered by the engine via interface assertion.
type (
	Compensator = model.Compensator
	Undoer      = model.Undoer
	Backoffer   = model.Backoffer
)

// RunResult, CompensateResult, and UndoResult are the closed sum types a
// step's Run, Compensate, and Undo return.
type (
	RunResult        = model.RunResult
	CompensateResult = model.CompensateResult
	UndoResult       = model.UndoResult
)

// Template and Argument describe where a step's input values come from.
type (
	Template = model.Template
	Argument = model.Argument
)

var validate = validator.New()

type stepSpec struct {
	Name string `validate:"required"`
}

// New creates an empty, Pending reactor identified by id.
func New(id string) *Reactor {
	return internalreactor.New(id)
}

// AddInput declares a named input the reactor accepts. It returns a
// validation error if name is empty or already declared.
func AddInput(r *Reactor, name string) (*Reactor, error) {
	if err := validate.Struct(stepSpec{Name: name}); err != nil {
		return r, reactorerrors.NewPlanError(name, "invalid input name", err)
	}
	if _, dup := r.Inputs[name]; dup {
		return r, reactorerrors.NewPlanError(name, "duplicate input name", nil)
	}
	r.Inputs[name] = struct{}{}
	return r, nil
}

// AddStep appends a step definition to the reactor's pending queue. It is
// not planned into the graph until Run is called.
func AddStep(r *Reactor, step model.StepDef) (*Reactor, error) {
	if err := validate.Struct(stepSpec{Name: step.Name}); err != nil {
		return r, reactorerrors.NewPlanError(step.Name, "invalid step name", err)
	}
	if step.Impl == nil {
		return r, reactorerrors.NewPlanError(step.Name, "step has no implementation", nil)
	}
	if step.Ref == 0 {
		step.Ref = model.NewRef()
	}
	r.Steps = append(r.Steps, step)
	return r, nil
}

// AddMiddleware appends hook to the reactor's ordered adapter chain.
func AddMiddleware(r *Reactor, hook middleware.Hook) (*Reactor, error) {
	if hook == nil {
		return r, reactorerrors.NewInvariantError("nil middleware hook")
	}
	r.Middleware = append(r.Middleware, hook)
	return r, nil
}

// SetReturn names the step whose result becomes the reactor's final value.
func SetReturn(r *Reactor, stepName string) (*Reactor, error) {
	if err := validate.Struct(stepSpec{Name: stepName}); err != nil {
		return r, reactorerrors.NewPlanError(stepName, "invalid return step name", err)
	}
	r.Return = stepName
	return r, nil
}

// Compose wires child into parent as a single step named name: running it
// invokes child's own Run to completion and surfaces its return value.
// Composing a reactor directly into itself (child.ID == parent.ID) is
// rejected with a ComposeError; transitive recursion through intermediate
// reactors is not detected.
func Compose(parent *Reactor, name string, child *Reactor, args []Argument) (*Reactor, error) {
	if child.ID == parent.ID {
		return parent, reactorerrors.NewComposeError(child.ID, "reactor cannot compose itself")
	}
	composed := composedStep{child: child}
	return AddStep(parent, model.StepDef{
		Name:      name,
		Ref:       model.NewRef(),
		Arguments: args,
		Impl:      composed,
		Async:     model.AsyncNever,
	})
}
