// Package plan builds and maintains the dependency graph a reactor executes
// over: steps become vertices keyed by their opaque Ref, argument edges
// connect a dependency to its dependent, and the graph is queried for
// currently-ready vertices as the executor loop drains it.
package plan

import (
	"sort"

	"github.com/alexisbeaulieu97/reactor/internal/model"
)

// VertexKind distinguishes vertex kinds in the graph. Only steps are
// planned today; the enum stays open for a future non-step vertex kind.
type VertexKind int

const (
	KindStep VertexKind = iota
)

// EdgeLabel documents why an edge exists, mirroring the
// {:argument, arg_name, :for, step_name} label from the reference design.
type EdgeLabel struct {
	ArgName string
	ForStep string
}

// Node is a vertex in the graph.
type Node struct {
	Ref  model.Ref
	Name string
	Kind VertexKind
	Step *model.StepDef

	// dependsOn / dependents are the opposite ends of each edge touching
	// this vertex, along with the label that explains the edge.
	dependsOn  map[model.Ref]EdgeLabel
	dependents map[model.Ref]EdgeLabel
}

// Graph is the mutable dependency graph. It is owned exclusively by the
// executor loop (single-threaded by design, see the concurrency model), so
// it carries no internal locking.
type Graph struct {
	nodes    map[model.Ref]*Node
	byName   map[string]model.Ref
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[model.Ref]*Node),
		byName: make(map[string]model.Ref),
	}
}

// AddStepVertex inserts a step definition as a KindStep vertex, indexing it
// by name for dependency lookups.
func (g *Graph) AddStepVertex(step *model.StepDef) *Node {
	node := &Node{
		Ref:        step.Ref,
		Name:       step.Name,
		Kind:       KindStep,
		Step:       step,
		dependsOn:  make(map[model.Ref]EdgeLabel),
		dependents: make(map[model.Ref]EdgeLabel),
	}
	g.nodes[step.Ref] = node
	g.byName[step.Name] = step.Ref
	return node
}

// Node returns the vertex for ref, if present.
func (g *Graph) Node(ref model.Ref) (*Node, bool) {
	n, ok := g.nodes[ref]
	return n, ok
}

// RefByName resolves a step name to its vertex ref.
func (g *Graph) RefByName(name string) (model.Ref, bool) {
	ref, ok := g.byName[name]
	return ref, ok
}

// AddEdge connects a dependency (from) to its dependent (to), both already
// present as vertices.
func (g *Graph) AddEdge(from, to model.Ref, label EdgeLabel) {
	source := g.nodes[from]
	target := g.nodes[to]
	source.dependents[to] = label
	target.dependsOn[from] = label
}

// RemoveVertex deletes a vertex and every edge touching it. Called when a
// step completes (success, unrecoverable failure, or halt).
func (g *Graph) RemoveVertex(ref model.Ref) {
	node, ok := g.nodes[ref]
	if !ok {
		return
	}
	for dep := range node.dependsOn {
		if other, ok := g.nodes[dep]; ok {
			delete(other.dependents, ref)
		}
	}
	for dep := range node.dependents {
		if other, ok := g.nodes[dep]; ok {
			delete(other.dependsOn, ref)
		}
	}
	if node.Kind == KindStep {
		delete(g.byName, node.Name)
	}
	delete(g.nodes, ref)
}

// Dependents returns the set of vertex refs that depend on this one,
// keyed by ref, each paired with the edge label that explains it.
func (n *Node) Dependents() map[model.Ref]EdgeLabel {
	return n.dependents
}

// InDegree reports how many unresolved dependencies a vertex still has.
func (g *Graph) InDegree(ref model.Ref) int {
	node, ok := g.nodes[ref]
	if !ok {
		return 0
	}
	return len(node.dependsOn)
}

// Len returns the number of vertices currently in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Ready returns every KindStep vertex with no unresolved dependency,
// ordered by ref for determinism.
func (g *Graph) Ready() []*Node {
	var ready []*Node
	for _, node := range g.nodes {
		if node.Kind != KindStep {
			continue
		}
		if len(node.dependsOn) == 0 {
			ready = append(ready, node)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Ref < ready[j].Ref })
	return ready
}

// CheckAcyclic reports whether the graph is currently free of cycles (true
// when acyclic) using a three-color DFS. Planning calls this after every batch of additions;
// determinism of the traversal doesn't matter, only the yes/no answer.
func (g *Graph) CheckAcyclic() bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[model.Ref]int, len(g.nodes))

	var visit func(ref model.Ref) bool
	visit = func(ref model.Ref) bool {
		switch color[ref] {
		case gray:
			return false
		case black:
			return true
		}
		color[ref] = gray
		node := g.nodes[ref]
		for dep := range node.dependents {
			if !visit(dep) {
				return false
			}
		}
		color[ref] = black
		return true
	}

	for ref := range g.nodes {
		if color[ref] == white {
			if !visit(ref) {
				return false
			}
		}
	}
	return true
}
