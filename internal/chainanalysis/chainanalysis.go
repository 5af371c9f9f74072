// Package chainanalysis implements the reasoning-chain graph analyzer: it
// builds a directed graph of the Analyst's argument nodes using
// github.com/dominikbraun/graph, the same construction pattern the
// upstream Graph-of-Thoughts controller uses for its thought graph, then
// hand-rolls the specific traversal algorithms the spec prescribes
// (cycle detection, topological order, depth layering, impact
// propagation, criticality, logic inflation) since those exact behaviors
// aren't exposed by the library's generic API.
package chainanalysis

import (
	"github.com/dominikbraun/graph"

	"researchengine/internal/errs"
	"researchengine/internal/schema"
)

// Analysis is the full result of analyzing one ArgumentGraph.
type Analysis struct {
	HasCycles          bool
	Cycles             [][]string
	TopologicalOrder   []string
	TopologicallyComplete bool
	Depths             map[string]int
	MaxDepth           int
	ImpactCounts       map[string]int
	CriticalNodes      map[string]string // node_id -> reason
	LogicWarnings      []string
	Anomalies          []error
}

// Build constructs the directed graph and runs every analysis pass over
// it. It never returns an error itself: structural problems are reported
// as errs.GraphAnomaly values inside Analysis.Anomalies so the Critic can
// weigh them, rather than aborting the pipeline.
//
// weaknesses feeds the criticality test's StructuredWeakness condition
// (§4.5 rule b). The Critic is the one that produces weaknesses, and the
// Critic is in turn informed by this analysis, so callers typically call
// Build with a nil weaknesses slice first to get cycle/impact/depth
// context for the Critic, then call RefineCriticalNodes once the Critic's
// review is in hand to fold its weaknesses into the final critical-node
// list.
func Build(ag *schema.ArgumentGraph, weaknesses []schema.StructuredWeakness) *Analysis {
	byID := ag.ByID()
	g := graph.New(func(n *schema.ArgumentNode) string { return n.NodeID }, graph.Directed())

	for _, n := range ag.Nodes {
		_ = g.AddVertex(n)
	}
	for _, n := range ag.Nodes {
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				continue
			}
			// An edge dep -> n: dep is a premise that n's claim depends on.
			_ = g.AddEdge(dep, n.NodeID)
		}
	}

	a := &Analysis{
		Depths:        make(map[string]int),
		ImpactCounts:  make(map[string]int),
		CriticalNodes: make(map[string]string),
	}

	forward, backward := adjacency(ag)

	a.Cycles = detectCycles(ag, forward)
	a.HasCycles = len(a.Cycles) > 0
	for _, cyc := range a.Cycles {
		a.Anomalies = append(a.Anomalies, &errs.GraphAnomaly{Kind: "cycle", Detail: joinIDs(cyc)})
	}

	a.TopologicalOrder, a.TopologicallyComplete = topologicalSort(ag, forward)
	if !a.TopologicallyComplete {
		a.Anomalies = append(a.Anomalies, &errs.GraphAnomaly{Kind: "incomplete_topological_order", Detail: "cycle prevented a full ordering; remaining nodes appended in declaration order"})
	}

	a.Depths, a.MaxDepth = bfsDepths(ag, forward)

	a.ImpactCounts = impactCounts(ag, backward)

	a.CriticalNodes = criticalNodes(ag, a.ImpactCounts, weaknesses)

	a.LogicWarnings = weakestLink(ag, byID)
	for i := range ag.Nodes {
		ag.Nodes[i].LogicWarnings = nil
	}
	for _, w := range a.LogicWarnings {
		// Warnings are keyed "node_id: message"; attach back to the node.
		id, msg := splitWarning(w)
		if n, ok := byID[id]; ok {
			n.LogicWarnings = append(n.LogicWarnings, msg)
		}
	}

	return a
}

// RefineCriticalNodes recomputes CriticalNodes once the Critic's
// structured weaknesses are available, without re-running cycle
// detection, topological sort, or impact propagation.
func (a *Analysis) RefineCriticalNodes(ag *schema.ArgumentGraph, weaknesses []schema.StructuredWeakness) {
	a.CriticalNodes = criticalNodes(ag, a.ImpactCounts, weaknesses)
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}

func splitWarning(w string) (id, msg string) {
	for i := 0; i < len(w); i++ {
		if w[i] == ':' {
			return w[:i], w[i+2:]
		}
	}
	return "", w
}
