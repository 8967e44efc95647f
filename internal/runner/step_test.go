package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/reactor/internal/middleware"
	"github.com/alexisbeaulieu97/reactor/internal/model"
	"github.com/alexisbeaulieu97/reactor/internal/plan"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

type stepFunc func(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult

func (f stepFunc) Run(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
	return f(ctx, args, reactorCtx)
}

func nodeFor(t *testing.T, step model.StepDef) *plan.Node {
	t.Helper()
	g := plan.NewGraph()
	n := g.AddStepVertex(&step)
	return n
}

func runStepForTest(t *testing.T, node *plan.Node) StepResult {
	t.Helper()
	args, baseCtx, err := PrepareStep(node, map[string]interface{}{}, map[string]interface{}{}, "pool")
	require.NoError(t, err)
	return RunStep(context.Background(), node, args, baseCtx, 0, nil, "r1")
}

func TestRunStepSucceeds(t *testing.T) {
	t.Parallel()

	step := model.StepDef{
		Name: "greet",
		Ref:  model.NewRef(),
		Impl: stepFunc(func(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
			return model.Ok("hi")
		}),
	}
	result := runStepForTest(t, nodeFor(t, step))
	require.Equal(t, Succeeded, result.Outcome)
	require.Equal(t, "hi", result.Value)
}

func TestRunStepRetriesThenExceeds(t *testing.T) {
	t.Parallel()

	step := model.StepDef{
		Name:       "flaky",
		Ref:        model.NewRef(),
		MaxRetries: 2,
		Impl: stepFunc(func(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
			return model.RetryBecause(assertErr("net"))
		}),
	}
	result := runStepForTest(t, nodeFor(t, step))
	require.Equal(t, Failed, result.Outcome)
	var exceeded *reactorerrors.RetriesExceededError
	require.ErrorAs(t, result.Err, &exceeded)
	require.Equal(t, 2, exceeded.RetryCount)
}

func TestRunStepCompensateContinues(t *testing.T) {
	t.Parallel()

	step := model.StepDef{
		Name: "compensated",
		Ref:  model.NewRef(),
		Impl: compensatingStep{},
	}
	result := runStepForTest(t, nodeFor(t, step))
	require.Equal(t, Succeeded, result.Outcome)
	require.Equal(t, "recovered", result.Value)
}

type compensatingStep struct{}

func (compensatingStep) Run(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
	return model.Err(assertErr("boom"))
}

func (compensatingStep) Compensate(ctx context.Context, err error, args, reactorCtx map[string]interface{}) model.CompensateResult {
	return model.CompensateContinue("recovered")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestMiddlewareChainNilIsSafe(t *testing.T) {
	t.Parallel()
	var chain middleware.Chain
	chain.Observe(middleware.StepEvent{})
}
