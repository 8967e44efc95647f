package plan

import (
	"fmt"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	reactorerrors "github.com/alexisbeaulieu97/reactor/pkg/errors"
)

// Plan folds pending step definitions into the graph: it seeds a
// step-by-name set from the graph's current vertices union the new steps,
// rejects a name collision, adds each new step as a vertex, wires argument
// edges for ResultRef sources, and finally checks acyclicity. It is
// incremental: calling Plan again after dynamic injection only extends the
// existing graph.
func Plan(g *Graph, pending []model.StepDef) error {
	if len(pending) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, g.Len()+len(pending))
	for name := range g.byName {
		seen[name] = struct{}{}
	}
	for _, step := range pending {
		if _, dup := seen[step.Name]; dup {
			return reactorerrors.NewPlanError(step.Name, "duplicate step name in a single plan call", nil)
		}
		seen[step.Name] = struct{}{}
	}

	for i := range pending {
		g.AddStepVertex(&pending[i])
	}

	for i := range pending {
		step := &pending[i]
		for _, arg := range step.Arguments {
			if arg.Source.Kind != model.ResultRef {
				continue
			}
			depName := arg.Source.Name
			depRef, ok := g.RefByName(depName)
			if !ok {
				return reactorerrors.NewPlanError(step.Name,
					fmt.Sprintf("depends on unknown step %q", depName), nil)
			}
			if depRef == step.Ref {
				// Self-reference: the controlled dynamic-recursion case.
				// Allowed without an edge.
				continue
			}
			g.AddEdge(depRef, step.Ref, EdgeLabel{ArgName: arg.Name, ForStep: step.Name})
		}
	}

	if !g.CheckAcyclic() {
		return reactorerrors.NewPlanError("", "cyclic dependency graph", nil)
	}

	return nil
}
