package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/reactor"
)

type runFunc func(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult

func (f runFunc) Run(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
	return f(ctx, args, reactorCtx)
}

func newReactorWithOneStep(t *testing.T, impl model.Step) *reactor.Reactor {
	t.Helper()
	r := reactor.New("engine-test")
	r.Steps = append(r.Steps, model.StepDef{
		Name: "only", Ref: model.NewRef(), Impl: impl, Async: model.AsyncNever,
	})
	r.Return = "only"
	return r
}

func TestRunRejectsNonRunnableReactor(t *testing.T) {
	t.Parallel()

	r := newReactorWithOneStep(t, runFunc(func(ctx context.Context, args, rc map[string]interface{}) model.RunResult {
		return model.Ok(1)
	}))
	r.LifecycleState = reactor.Executing

	result := Run(context.Background(), r, nil, nil, DefaultOptions(), nil)
	require.Error(t, result.Err)
}

func TestRunMaxIterationsHaltsRatherThanFails(t *testing.T) {
	t.Parallel()

	r := newReactorWithOneStep(t, runFunc(func(ctx context.Context, args, rc map[string]interface{}) model.RunResult {
		return model.Ok(1)
	}))

	opts := DefaultOptions()
	opts.MaxIterations = 0

	result := Run(context.Background(), r, nil, nil, opts, nil)
	require.NoError(t, result.Err)
	require.NotNil(t, result.Halted)
	require.Equal(t, reactor.Halted, result.Halted.LifecycleState)
}

func TestRunSucceedsAndSetsSuccessfulState(t *testing.T) {
	t.Parallel()

	r := newReactorWithOneStep(t, runFunc(func(ctx context.Context, args, rc map[string]interface{}) model.RunResult {
		return model.Ok("done")
	}))

	result := Run(context.Background(), r, nil, nil, DefaultOptions(), nil)
	require.NoError(t, result.Err)
	require.Nil(t, result.Halted)
	require.Equal(t, "done", result.Value)
	require.Equal(t, reactor.Successful, r.LifecycleState)
}

func TestRunFailurePropagatesStepError(t *testing.T) {
	t.Parallel()

	r := newReactorWithOneStep(t, runFunc(func(ctx context.Context, args, rc map[string]interface{}) model.RunResult {
		return model.Err(errBoom{})
	}))

	result := Run(context.Background(), r, nil, nil, DefaultOptions(), nil)
	require.Error(t, result.Err)
	require.Equal(t, reactor.Failed, r.LifecycleState)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
