package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"researchengine/internal/obslog"
	"researchengine/internal/schema"
)

// Analyst drafts the answer and the argument graph that supports it,
// citing only the source indices it was given, and recording any
// information gap it filled from its own knowledge separately from the
// cited claims.
type Analyst struct {
	*BaseAgent
}

func NewAnalyst(base *BaseAgent) *Analyst {
	base.Name = "analyst"
	return &Analyst{BaseAgent: base}
}

func analystSchema() schema.JSONSchema {
	nodeItem := schema.NewBuilder("one argument graph node").
		AddString("node_id", "unique id within this graph", true).
		AddString("claim", "the claim text", true).
		AddStringEnum("confidence", "qualitative confidence", []string{"low", "medium", "high"}, true).
		AddNumberWithRange("confidence_score", "numeric confidence 0-10", 0, 10, false).
		AddStringArray("depends_on", "node_ids this claim's confidence rests on", false).
		NoAdditionalProperties().
		Build()

	gapItem := schema.NewBuilder("a filled information gap").
		AddString("gap", "what was missing from the sources", true).
		AddString("resolution", "how it was resolved", true).
		AddStringEnum("source_type", "where the resolution came from", []string{"llm_knowledge", "web_reference"}, true).
		NoAdditionalProperties().
		Build()

	return schema.NewBuilder("analyst draft, argument graph, and citations").
		AddString("draft", "the draft answer", true).
		AddArray("argument_graph", "claims supporting the draft", nodeItem, true).
		AddIntegerArray("citations", "1-based source indices actually used", true).
		AddArray("gap_resolutions", "information gaps filled outside the given sources", gapItem, false).
		NoAdditionalProperties().
		Build()
}

// Run produces the Analyst's output for query against sourcesText (the
// numbered, tier-prefixed rendering of the filtered source set) under
// mode.
func (a *Analyst) Run(ctx context.Context, logger obslog.QueryLogger, query, sourcesText string, mode schema.Mode) (*schema.AnalystOutput, error) {
	result, err := a.Call(ctx, logger, "analyst", map[string]string{
		"query":   query,
		"sources": sourcesText,
		"mode":    string(mode),
	}, analystSchema(), highLevel())
	if err != nil {
		return nil, err
	}

	out := &schema.AnalystOutput{
		Draft:     asString(result["draft"]),
		Citations: asIntSlice(result["citations"]),
	}

	if nodesRaw, ok := result["argument_graph"].([]any); ok {
		for i, item := range nodesRaw {
			nm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			n := &schema.ArgumentNode{
				NodeID:     asString(nm["node_id"]),
				Claim:      asString(nm["claim"]),
				Confidence: schema.ConfidenceLabel(asString(nm["confidence"])),
				DependsOn:  asStringSlice(nm["depends_on"]),
			}
			if n.NodeID == "" {
				n.NodeID = fmt.Sprintf("node-%d", i)
			}
			if score, ok := asFloat(nm["confidence_score"]); ok {
				n.ConfidenceScore = &score
			}
			out.ArgumentGraph = append(out.ArgumentGraph, n)
		}
	}

	if gapsRaw, ok := result["gap_resolutions"].([]any); ok {
		for _, item := range gapsRaw {
			gm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out.GapResolutions = append(out.GapResolutions, schema.GapResolution{
				Gap:        asString(gm["gap"]),
				Resolution: asString(gm["resolution"]),
				SourceType: asString(gm["source_type"]),
			})
		}
	}

	return out, nil
}

// RenderSources formats the filtered, tier-enriched source set as the
// numbered block the Analyst and CoV prompts expect,
// so the 1-based index a claim cites is stable across stages.
func RenderSources(items []schema.SourceItem) string {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, it.Title, it.Description, it.URL)
	}
	return b.String()
}

// ValidCitations returns the ids in ids that fall outside [1, n]; an empty
// result means every id is valid.
func ValidCitations(ids []int, n int) []int {
	var invalid []int
	for _, id := range ids {
		if id < 1 || id > n {
			invalid = append(invalid, id)
		}
	}
	return invalid
}

// ParseNodeIndex extracts the trailing integer from a generated node_id
// like "node-3", for stable ordering when the model doesn't number nodes
// sequentially. Returns -1 if no trailing digits are present.
func ParseNodeIndex(nodeID string) int {
	i := len(nodeID)
	for i > 0 && nodeID[i-1] >= '0' && nodeID[i-1] <= '9' {
		i--
	}
	if i == len(nodeID) {
		return -1
	}
	n, err := strconv.Atoi(nodeID[i:])
	if err != nil {
		return -1
	}
	return n
}
