package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewPlanError("fetch", "depends on unknown step", underlying)

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	require.Equal(t, "fetch", planErr.StepName)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "fetch")
}

func TestMissingInputErrorNamesInput(t *testing.T) {
	t.Parallel()

	err := NewMissingInputError("whom")

	var missing *MissingInputError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "whom", missing.InputName)
	require.True(t, stdErrors.Is(err, &MissingInputError{}))
}

func TestArgumentSubpathErrorIncludesPathAndKey(t *testing.T) {
	t.Parallel()

	err := NewArgumentSubpathError([]string{"user", "address"}, "zip", "neither map nor keyword-list", "key not found")

	require.Contains(t, err.Error(), "user.address")
	require.Contains(t, err.Error(), "zip")
	require.Contains(t, err.Error(), "neither map nor keyword-list")
}

func TestRunStepErrorUnwrapsOriginal(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("boom")
	err := NewRunStepError("greet", underlying)

	var runErr *RunStepError
	require.ErrorAs(t, err, &runErr)
	require.Equal(t, "greet", runErr.StepName)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestRetriesExceededErrorCarriesCount(t *testing.T) {
	t.Parallel()

	err := NewRetriesExceededError("flaky", 2, stdErrors.New("net"))

	var retryErr *RetriesExceededError
	require.ErrorAs(t, err, &retryErr)
	require.Equal(t, 2, retryErr.RetryCount)
	require.Contains(t, err.Error(), "net")
}

func TestAggregateCollectsAndFormatsErrors(t *testing.T) {
	t.Parallel()

	agg := NewAggregate()
	require.True(t, agg.Empty())

	agg.Add(NewRunStepError("a", stdErrors.New("first")))
	agg.Add(nil)
	agg.Add(NewUndoStepError("b", stdErrors.New("second")))

	require.False(t, agg.Empty())
	require.Len(t, agg.Errors(), 2)
	require.Contains(t, agg.Error(), "2 errors occurred")

	var runErr *RunStepError
	require.True(t, stdErrors.As(agg, &runErr))
	require.Equal(t, "a", runErr.StepName)
}

func TestAggregateFindErrorsDescendsIntoNested(t *testing.T) {
	t.Parallel()

	inner := NewAggregate(NewUndoStepError("inner", stdErrors.New("x")))
	outer := NewAggregate(NewRunStepError("outer", stdErrors.New("y")))
	outer.Add(inner)

	found := outer.FindErrors(func(err error) bool {
		_, ok := err.(*UndoStepError)
		return ok
	})
	require.Len(t, found, 1)
}
