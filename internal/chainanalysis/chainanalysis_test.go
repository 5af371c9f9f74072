package chainanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/schema"
)

func score(v float64) *float64 { return &v }

func nodeID(id string) *string { return &id }

func TestBuild_AcyclicGraph_TopologicalOrderComplete(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "a", Claim: "premise", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(8)},
		{NodeID: "b", Claim: "conclusion", Confidence: schema.ConfidenceMedium, ConfidenceScore: score(6), DependsOn: []string{"a"}},
	}}
	a := Build(ag, nil)
	assert.False(t, a.HasCycles)
	require.True(t, a.TopologicallyComplete)
	assert.Equal(t, []string{"a", "b"}, a.TopologicalOrder)
	assert.Equal(t, 0, a.Depths["a"])
	assert.Equal(t, 1, a.Depths["b"])
}

func TestBuild_DetectsCycle(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "a", Claim: "x", Confidence: schema.ConfidenceHigh, DependsOn: []string{"b"}},
		{NodeID: "b", Claim: "y", Confidence: schema.ConfidenceHigh, DependsOn: []string{"a"}},
	}}
	a := Build(ag, nil)
	assert.True(t, a.HasCycles)
	require.NotEmpty(t, a.Cycles)
	assert.False(t, a.TopologicallyComplete)
	require.Len(t, a.Anomalies, 2) // cycle + incomplete order
}

func TestBuild_ImpactCounts_LowConfidencePremiseIsCritical(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "root", Claim: "r", Confidence: schema.ConfidenceLow, ConfidenceScore: score(4)},
		{NodeID: "mid", Claim: "m", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(8), DependsOn: []string{"root"}},
		{NodeID: "leaf", Claim: "l", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(7), DependsOn: []string{"mid"}},
	}}
	a := Build(ag, nil)
	assert.Equal(t, 2, a.ImpactCounts["root"])
	assert.Equal(t, 1, a.ImpactCounts["mid"])
	assert.Equal(t, 0, a.ImpactCounts["leaf"])
	// root: confidence 4 < 6 and affects_count 2 >= 2 -> critical.
	assert.Contains(t, a.CriticalNodes, "root")
	// mid: confidence 8, not below 6 -> not critical on rule (a), and no
	// weaknesses attached -> not critical on rule (b) either.
	assert.NotContains(t, a.CriticalNodes, "mid")
}

func TestBuild_HighConfidenceHighImpactIsNotCriticalWithoutWeakness(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "root", Claim: "r", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(9)},
		{NodeID: "mid", Claim: "m", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(8), DependsOn: []string{"root"}},
		{NodeID: "leaf", Claim: "l", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(7), DependsOn: []string{"mid"}},
	}}
	a := Build(ag, nil)
	assert.NotContains(t, a.CriticalNodes, "root")
}

func TestRefineCriticalNodes_CriticalWeaknessMakesNodeCritical(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "root", Claim: "r", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(9)},
		{NodeID: "mid", Claim: "m", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(8), DependsOn: []string{"root"}},
	}}
	a := Build(ag, nil)
	require.NotContains(t, a.CriticalNodes, "root")

	weaknesses := []schema.StructuredWeakness{
		{NodeID: nodeID("root"), Severity: schema.SeverityCritical, Description: "unsupported premise"},
	}
	a.RefineCriticalNodes(ag, weaknesses)
	// root: affects_count 1 >= 1 and has a critical weakness -> critical.
	assert.Contains(t, a.CriticalNodes, "root")
}

func TestBuild_WeakestLink_FlagsLogicInflation(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "shaky", Claim: "uncertain premise", Confidence: schema.ConfidenceLow, ConfidenceScore: score(2)},
		{NodeID: "overconfident", Claim: "strong conclusion", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(9), DependsOn: []string{"shaky"}},
	}}
	a := Build(ag, nil)
	require.NotEmpty(t, a.LogicWarnings)
	assert.Contains(t, a.LogicWarnings[0], "overconfident")
	require.Len(t, ag.Nodes[1].LogicWarnings, 1)
}

func TestBuild_WeakestLink_SmallGapIsNotFlagged(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "parent", Claim: "premise", Confidence: schema.ConfidenceMedium, ConfidenceScore: score(5)},
		{NodeID: "child", Claim: "conclusion", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(6.5), DependsOn: []string{"parent"}},
	}}
	a := Build(ag, nil)
	assert.Empty(t, a.LogicWarnings)
}

func TestBuild_WeakestLink_FlagsEachViolatingParent(t *testing.T) {
	ag := &schema.ArgumentGraph{Nodes: []*schema.ArgumentNode{
		{NodeID: "p1", Claim: "weak premise one", Confidence: schema.ConfidenceLow, ConfidenceScore: score(1)},
		{NodeID: "p2", Claim: "weak premise two", Confidence: schema.ConfidenceLow, ConfidenceScore: score(2)},
		{NodeID: "child", Claim: "conclusion", Confidence: schema.ConfidenceHigh, ConfidenceScore: score(9), DependsOn: []string{"p1", "p2"}},
	}}
	a := Build(ag, nil)
	require.Len(t, a.LogicWarnings, 2)
	require.Len(t, ag.Nodes[2].LogicWarnings, 2)
}

func TestBuild_EmptyGraph(t *testing.T) {
	a := Build(&schema.ArgumentGraph{}, nil)
	assert.False(t, a.HasCycles)
	assert.Empty(t, a.CriticalNodes)
}
