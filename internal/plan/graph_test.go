package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/reactor/internal/model"
)

func stepDef(name string, deps ...string) model.StepDef {
	args := make([]model.Argument, 0, len(deps))
	for _, d := range deps {
		args = append(args, model.Argument{Name: d, Source: model.Result(d)})
	}
	return model.StepDef{Name: name, Ref: model.NewRef(), Arguments: args}
}

func TestPlanWiresResultRefEdges(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a := stepDef("a")
	b := stepDef("b", "a")
	c := stepDef("c", "a")
	d := stepDef("d", "b")

	require.NoError(t, Plan(g, []model.StepDef{a, b, c, d}))
	require.Equal(t, 4, g.Len())

	aRef, _ := g.RefByName("a")
	require.Equal(t, 0, g.InDegree(aRef))

	bRef, _ := g.RefByName("b")
	require.Equal(t, 1, g.InDegree(bRef))
}

func TestPlanReadyComputesInDegreeZero(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a := stepDef("a")
	b := stepDef("b", "a")
	c := stepDef("c")

	require.NoError(t, Plan(g, []model.StepDef{a, b, c}))

	ready := g.Ready()
	names := make([]string, 0, len(ready))
	for _, n := range ready {
		names = append(names, n.Name)
	}
	require.ElementsMatch(t, []string{"a", "c"}, names)
}

func TestPlanRejectsUnknownDependency(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	step := stepDef("needs-ghost", "ghost")

	err := Plan(g, []model.StepDef{step})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown step")
}

func TestPlanRejectsDuplicateNameInSingleCall(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a1 := stepDef("a")
	a2 := stepDef("a")

	err := Plan(g, []model.StepDef{a1, a2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")
}

func TestPlanRejectsCycle(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a := model.StepDef{Name: "a", Ref: model.NewRef()}
	b := model.StepDef{Name: "b", Ref: model.NewRef()}
	a.Arguments = []model.Argument{{Name: "x", Source: model.Result("b")}}
	b.Arguments = []model.Argument{{Name: "y", Source: model.Result("a")}}

	err := Plan(g, []model.StepDef{a, b})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cyclic")
}

func TestPlanAllowsSelfReferenceWithoutEdge(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	ref := model.NewRef()
	step := model.StepDef{
		Name: "recur",
		Ref:  ref,
	}
	step.Arguments = []model.Argument{{Name: "prev", Source: model.Result("recur")}}

	require.NoError(t, Plan(g, []model.StepDef{step}))
	require.Equal(t, 0, g.InDegree(ref))
}

func TestPlanIsIncremental(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a := stepDef("a")
	require.NoError(t, Plan(g, []model.StepDef{a}))

	b := stepDef("b", "a")
	require.NoError(t, Plan(g, []model.StepDef{b}))

	require.Equal(t, 2, g.Len())
	bRef, _ := g.RefByName("b")
	require.Equal(t, 1, g.InDegree(bRef))
}

func TestRemoveVertexClearsEdgesBothWays(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	a := stepDef("a")
	b := stepDef("b", "a")
	require.NoError(t, Plan(g, []model.StepDef{a, b}))

	aRef, _ := g.RefByName("a")
	g.RemoveVertex(aRef)

	bRef, _ := g.RefByName("b")
	require.Equal(t, 0, g.InDegree(bRef))
	require.Equal(t, 1, g.Len())
}
