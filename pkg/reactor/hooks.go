package reactor

import "github.com/alexisbeaulieu97/reactor/internal/middleware"

// funcInitHook, funcHaltHook, funcCompleteHook, and funcErrorHook adapt a
// plain function into the matching optional middleware interface, so
// OnInit/OnHalt/OnComplete/OnError can register a closure directly instead
// of requiring callers to define a named type.

type funcInitHook func(ctx map[string]interface{}) map[string]interface{}

func (f funcInitHook) OnInit(ctx map[string]interface{}) map[string]interface{} { return f(ctx) }

type funcHaltHook func(ctx map[string]interface{}) map[string]interface{}

func (f funcHaltHook) OnHalt(ctx map[string]interface{}) map[string]interface{} { return f(ctx) }

type funcCompleteHook func(value interface{}) interface{}

func (f funcCompleteHook) OnComplete(value interface{}) interface{} { return f(value) }

type funcErrorHook func(err error) error

func (f funcErrorHook) OnError(err error) error { return f(err) }

// OnInit registers fn to run when the reactor begins or resumes execution.
func OnInit(r *Reactor, fn func(ctx map[string]interface{}) map[string]interface{}) (*Reactor, error) {
	return AddMiddleware(r, funcInitHook(fn))
}

// OnHalt registers fn to run when the reactor transitions to Halted.
func OnHalt(r *Reactor, fn func(ctx map[string]interface{}) map[string]interface{}) (*Reactor, error) {
	return AddMiddleware(r, funcHaltHook(fn))
}

// OnComplete registers fn to run once, with the terminal value, when the
// reactor transitions to Successful.
func OnComplete(r *Reactor, fn func(value interface{}) interface{}) (*Reactor, error) {
	return AddMiddleware(r, funcCompleteHook(fn))
}

// OnError registers fn to run when the reactor transitions to Failed. fn
// may replace the error surfaced to the caller.
func OnError(r *Reactor, fn func(err error) error) (*Reactor, error) {
	return AddMiddleware(r, funcErrorHook(fn))
}

// StepObserver and StepEvent re-export the middleware package's
// observational hook surface for per-step lifecycle events.
type (
	StepObserver = middleware.StepObserver
	StepEvent    = middleware.StepEvent
)
