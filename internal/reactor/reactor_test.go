package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/reactor/internal/model"
)

func TestNewReactorIsPendingAndRunnable(t *testing.T) {
	t.Parallel()

	r := New("r1")
	require.Equal(t, Pending, r.LifecycleState)
	require.True(t, r.CanRun())
	require.NotNil(t, r.Graph)
	require.NotNil(t, r.Inputs)
	require.NotNil(t, r.IntermediateResults)
}

func TestCanRunRejectsExecutingAndTerminalStates(t *testing.T) {
	t.Parallel()

	for _, s := range []State{Executing, Failed, Successful} {
		r := New("r1")
		r.LifecycleState = s
		require.False(t, r.CanRun(), "state %s should not be runnable", s)
	}

	r := New("r1")
	r.LifecycleState = Halted
	require.True(t, r.CanRun())
}

func TestPushAndPopUndoIsLIFO(t *testing.T) {
	t.Parallel()

	r := New("r1")
	r.PushUndo(UndoEntry{StepName: "s1"})
	r.PushUndo(UndoEntry{StepName: "s2"})

	entry, ok := r.PopUndo()
	require.True(t, ok)
	require.Equal(t, "s2", entry.StepName)

	entry, ok = r.PopUndo()
	require.True(t, ok)
	require.Equal(t, "s1", entry.StepName)

	_, ok = r.PopUndo()
	require.False(t, ok)
}

func TestCloneCopiesMapsOneLevelDeep(t *testing.T) {
	t.Parallel()

	r := New("r1")
	r.Inputs["whom"] = struct{}{}
	r.Context["x"] = 1
	r.IntermediateResults["a"] = 1
	r.Steps = append(r.Steps, model.StepDef{Name: "a", Ref: model.NewRef()})
	r.PushUndo(UndoEntry{StepName: "a"})

	clone := r.Clone()
	clone.Context["x"] = 2
	clone.IntermediateResults["a"] = 2
	clone.Inputs["extra"] = struct{}{}

	require.Equal(t, 1, r.Context["x"])
	require.Equal(t, 1, r.IntermediateResults["a"])
	require.NotContains(t, r.Inputs, "extra")
	require.Equal(t, r.ID, clone.ID)
	require.Len(t, clone.Steps, 1)
	require.Len(t, clone.Undo, 1)
}

func TestStateStringCoversEveryState(t *testing.T) {
	t.Parallel()

	cases := map[State]string{
		Pending:    "pending",
		Executing:  "executing",
		Halted:     "halted",
		Failed:     "failed",
		Successful: "successful",
		State(99):  "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}
