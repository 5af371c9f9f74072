package chainanalysis

import (
	"fmt"
	"strings"

	"researchengine/internal/schema"
)

// adjacency builds forward (node -> nodes that depend on it) and backward
// (node -> its premises, i.e. depends_on) maps directly from the argument
// graph, so each algorithm below walks plain Go maps rather than going
// back through the graph library for every traversal.
func adjacency(ag *schema.ArgumentGraph) (forward, backward map[string][]string) {
	forward = make(map[string][]string)
	backward = make(map[string][]string)
	byID := ag.ByID()

	for _, n := range ag.Nodes {
		if _, ok := forward[n.NodeID]; !ok {
			forward[n.NodeID] = nil
		}
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				continue // dangling parent reference; not this pass's concern
			}
			forward[dep] = append(forward[dep], n.NodeID)
			backward[n.NodeID] = append(backward[n.NodeID], dep)
		}
	}
	return forward, backward
}

// detectCycles runs DFS with a recursion stack from every unvisited node,
// reporting each distinct cycle as the path from the node where the back
// edge was found back to itself.
func detectCycles(ag *schema.ArgumentGraph, forward map[string][]string) [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(ag.Nodes))
	var path []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		path = append(path, id)

		for _, next := range forward[id] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cycles = append(cycles, extractCycle(path, next))
			}
		}

		path = path[:len(path)-1]
		color[id] = black
	}

	for _, n := range ag.Nodes {
		if color[n.NodeID] == white {
			visit(n.NodeID)
		}
	}
	return cycles
}

// extractCycle returns the portion of path from the first occurrence of
// target to the end, closing the loop back to target.
func extractCycle(path []string, target string) []string {
	for i, id := range path {
		if id == target {
			cyc := append([]string{}, path[i:]...)
			return append(cyc, target)
		}
	}
	return []string{target}
}

// topologicalSort runs Kahn's algorithm. If a cycle prevents a complete
// ordering, the nodes that could not be placed are appended at the end in
// their original declaration order, and complete is false.
func topologicalSort(ag *schema.ArgumentGraph, forward map[string][]string) (order []string, complete bool) {
	indegree := make(map[string]int, len(ag.Nodes))
	for _, n := range ag.Nodes {
		indegree[n.NodeID] = 0
	}
	for _, targets := range forward {
		for _, t := range targets {
			indegree[t]++
		}
	}

	var queue []string
	for _, n := range ag.Nodes {
		if indegree[n.NodeID] == 0 {
			queue = append(queue, n.NodeID)
		}
	}

	placed := make(map[string]bool, len(ag.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		placed[id] = true

		for _, next := range forward[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) == len(ag.Nodes) {
		return order, true
	}

	for _, n := range ag.Nodes {
		if !placed[n.NodeID] {
			order = append(order, n.NodeID)
		}
	}
	return order, false
}

// bfsDepths layers every node by shortest distance from an axiom (a node
// with no premises), via BFS from all axioms simultaneously.
func bfsDepths(ag *schema.ArgumentGraph, forward map[string][]string) (depths map[string]int, maxDepth int) {
	depths = make(map[string]int, len(ag.Nodes))
	var queue []string

	for _, n := range ag.Nodes {
		if n.IsAxiom() {
			depths[n.NodeID] = 0
			queue = append(queue, n.NodeID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d := depths[id]
		if d > maxDepth {
			maxDepth = d
		}
		for _, next := range forward[id] {
			if _, seen := depths[next]; !seen {
				depths[next] = d + 1
				queue = append(queue, next)
			}
		}
	}

	// Nodes unreachable from any axiom (e.g. inside a pure cycle with no
	// axiom feeding it) get depth 0 so every node still has a value.
	for _, n := range ag.Nodes {
		if _, ok := depths[n.NodeID]; !ok {
			depths[n.NodeID] = 0
		}
	}
	return depths, maxDepth
}

// impactCounts computes, for each node, the number of distinct descendant
// nodes that transitively depend on it, via memoized DFS over the
// backward (depends_on) adjacency viewed from each node's perspective:
// impact(n) = count of nodes m such that n is reachable from m by
// following depends_on edges.
func impactCounts(ag *schema.ArgumentGraph, backward map[string][]string) map[string]int {
	memo := make(map[string]map[string]bool) // node -> set of ancestors (premises, transitively)

	var ancestorsOf func(id string, visiting map[string]bool) map[string]bool
	ancestorsOf = func(id string, visiting map[string]bool) map[string]bool {
		if cached, ok := memo[id]; ok {
			return cached
		}
		if visiting[id] {
			return map[string]bool{} // cycle guard
		}
		visiting[id] = true

		set := make(map[string]bool)
		for _, dep := range backward[id] {
			set[dep] = true
			for a := range ancestorsOf(dep, visiting) {
				set[a] = true
			}
		}
		delete(visiting, id)
		memo[id] = set
		return set
	}

	impact := make(map[string]int, len(ag.Nodes))
	for _, n := range ag.Nodes {
		impact[n.NodeID] = 0
	}
	for _, n := range ag.Nodes {
		for ancestor := range ancestorsOf(n.NodeID, map[string]bool{}) {
			impact[ancestor]++
		}
	}
	return impact
}

// criticalNodes flags a node as critical when either: (a) its own
// confidence score is below 6 and it affects at least 2 downstream claims,
// or (b) the Critic attached at least one critical-severity structured
// weakness to it and it affects at least 1 downstream claim. Either
// condition alone is sufficient; both may hold at once.
func criticalNodes(ag *schema.ArgumentGraph, impact map[string]int, weaknesses []schema.StructuredWeakness) map[string]string {
	out := make(map[string]string)

	criticalWeaknessCount := make(map[string]int, len(ag.Nodes))
	for _, w := range weaknesses {
		if w.Severity == schema.SeverityCritical && w.NodeID != nil {
			criticalWeaknessCount[*w.NodeID]++
		}
	}

	for _, n := range ag.Nodes {
		affects := impact[n.NodeID]
		var reasons []string

		if n.Score() < 6.0 && affects >= 2 {
			reasons = append(reasons, fmt.Sprintf("low confidence (%.1f/10) affects %d downstream claims", n.Score(), affects))
		}
		if count := criticalWeaknessCount[n.NodeID]; count > 0 && affects >= 1 {
			reasons = append(reasons, fmt.Sprintf("%d critical weakness(es) affect downstream reasoning", count))
		}

		if len(reasons) > 0 {
			out[n.NodeID] = strings.Join(reasons, "; ")
		}
	}
	return out
}

// weakestLink implements the "weakest link" logic-inflation check: a node
// may not exceed any premise it directly depends on by more than the
// 3.0-point inflation threshold. Each violating parent produces its own
// warning, since a node can be inflated relative to some premises and not
// others. Violations are reported as "<node_id>: <message>" strings.
func weakestLink(ag *schema.ArgumentGraph, byID map[string]*schema.ArgumentNode) []string {
	const inflationThreshold = 3.0
	var warnings []string
	for _, n := range ag.Nodes {
		if len(n.DependsOn) == 0 {
			continue
		}
		for _, dep := range n.DependsOn {
			p, ok := byID[dep]
			if !ok {
				continue
			}
			if n.Score() > p.Score()+inflationThreshold {
				warnings = append(warnings, fmt.Sprintf("%s: confidence %.1f exceeds premise %s at %.1f by more than %.1f (logic inflation)", n.NodeID, n.Score(), p.NodeID, p.Score(), inflationThreshold))
			}
		}
	}
	return warnings
}
