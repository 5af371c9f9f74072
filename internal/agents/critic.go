package agents

import (
	"context"
	"fmt"

	"researchengine/internal/chainanalysis"
	"researchengine/internal/obslog"
	"researchengine/internal/schema"
)

// Critic reviews the draft, its argument graph analysis, and its CoV
// results, then auto-escalates its own verdict when the graph analyzer
// found a structural problem the model's own verdict didn't account for.
type Critic struct {
	*BaseAgent
	CriticalWeaknessThreshold int
	StructuredCritiqueEnabled bool
}

func NewCritic(base *BaseAgent, criticalWeaknessThreshold int, structuredCritiqueEnabled bool) *Critic {
	base.Name = "critic"
	if criticalWeaknessThreshold <= 0 {
		criticalWeaknessThreshold = 2
	}
	return &Critic{BaseAgent: base, CriticalWeaknessThreshold: criticalWeaknessThreshold, StructuredCritiqueEnabled: structuredCritiqueEnabled}
}

func criticSchema() schema.JSONSchema {
	weaknessItem := schema.NewBuilder("a single structured weakness").
		AddString("node_id", "argument graph node this weakness concerns, if any", false).
		AddStringEnum("severity", "how serious this weakness is", []string{"info", "warning", "critical"}, true).
		AddString("category", "short category label", true).
		AddString("description", "what is wrong", true).
		AddString("suggested_fix", "how the writer should address it", true).
		NoAdditionalProperties().
		Build()

	return schema.NewBuilder("critic verdict on a draft").
		AddStringEnum("status", "overall verdict", []string{"APPROVE", "WARN", "REJECT"}, true).
		AddString("critique", "prose critique", true).
		AddStringArray("suggestions", "improvement suggestions", false).
		AddBoolean("mode_compliance", "whether the draft respects the mode's constraints", true).
		AddStringArray("logical_gaps", "logical gaps found", false).
		AddStringArray("source_issues", "source quality issues found", false).
		AddArray("structured_weaknesses", "machine-readable weaknesses", weaknessItem, false).
		NoAdditionalProperties().
		Build()
}

// Run produces the Critic's review, then applies the fixed auto-escalation
// rule: under strict mode, a cycle in the argument graph or a contradicted
// CoV claim forces the status to REJECT regardless of what the model
// returned. Independently of mode, if structured critique is enabled and
// at least CriticalWeaknessThreshold critical structured weaknesses are
// present, the status is also forced to REJECT. The model may only
// escalate toward REJECT on its own, never be talked out of one of these
// hard signals once they apply.
func (c *Critic) Run(ctx context.Context, logger obslog.QueryLogger, query, draft string, mode schema.Mode, graphAnalysis *chainanalysis.Analysis, cov *schema.CoVResult) (*schema.CriticReview, error) {
	result, err := c.Call(ctx, logger, "critic", map[string]string{
		"query":                   query,
		"mode":                    string(mode),
		"draft":                   draft,
		"graph_analysis":          summarizeGraphAnalysis(graphAnalysis),
		"cov_results":             summarizeCoV(cov),
		"critical_weakness_count": fmt.Sprintf("%d", c.CriticalWeaknessThreshold),
	}, criticSchema(), highLevel())
	if err != nil {
		return nil, err
	}

	review := &schema.CriticReview{
		Status:         schema.CriticStatus(asString(result["status"])),
		Critique:       asString(result["critique"]),
		Suggestions:    asStringSlice(result["suggestions"]),
		ModeCompliance: asBool(result["mode_compliance"]),
		LogicalGaps:    asStringSlice(result["logical_gaps"]),
		SourceIssues:   asStringSlice(result["source_issues"]),
	}
	if wRaw, ok := result["structured_weaknesses"].([]any); ok {
		for _, item := range wRaw {
			wm, ok := item.(map[string]any)
			if !ok {
				continue
			}
			w := schema.StructuredWeakness{
				Severity:     schema.WeaknessSeverity(asString(wm["severity"])),
				Category:     asString(wm["category"]),
				Description:  asString(wm["description"]),
				SuggestedFix: asString(wm["suggested_fix"]),
			}
			if nid := asString(wm["node_id"]); nid != "" {
				w.NodeID = &nid
			}
			review.StructuredWeaknesses = append(review.StructuredWeaknesses, w)
		}
	}

	c.autoEscalate(review, graphAnalysis, cov, mode)

	if logger != nil {
		criticalNodes := 0
		if graphAnalysis != nil {
			criticalNodes = len(graphAnalysis.CriticalNodes)
		}
		logger.CriticStatus(review.Status, criticalNodes)
		if graphAnalysis != nil {
			logger.GraphSummary(graphAnalysis.HasCycles, len(graphAnalysis.LogicWarnings))
		}
	}

	return review, nil
}

func (c *Critic) autoEscalate(review *schema.CriticReview, graphAnalysis *chainanalysis.Analysis, cov *schema.CoVResult, mode schema.Mode) {
	reasons := []string{}

	// Cycle and contradiction hard overrides are a strict-mode rule per the
	// Critic's mode-specific contract; discovery/monitor leave these to the
	// model's own judgment (discovery explicitly allows speculation).
	if mode == schema.ModeStrict {
		if graphAnalysis != nil && graphAnalysis.HasCycles {
			reasons = append(reasons, "argument graph contains a cycle")
		}
		if cov != nil && cov.ContradictedCount > 0 {
			reasons = append(reasons, fmt.Sprintf("%d CoV claim(s) contradicted", cov.ContradictedCount))
		}
	}

	if c.StructuredCritiqueEnabled && review.CriticalWeaknessCount() >= c.CriticalWeaknessThreshold {
		reasons = append(reasons, fmt.Sprintf("%d critical structured weaknesses", review.CriticalWeaknessCount()))
	}

	if len(reasons) > 0 && review.Status != schema.StatusReject {
		review.AutoEscalated = true
		review.EscalationNote = "escalated to REJECT: " + joinReasons(reasons)
		review.Status = schema.StatusReject
	}
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

func summarizeGraphAnalysis(a *chainanalysis.Analysis) string {
	if a == nil {
		return "no argument graph analysis available"
	}
	return fmt.Sprintf(
		"has_cycles=%v critical_nodes=%d logic_warnings=%d max_depth=%d topologically_complete=%v",
		a.HasCycles, len(a.CriticalNodes), len(a.LogicWarnings), a.MaxDepth, a.TopologicallyComplete,
	)
}

func summarizeCoV(cov *schema.CoVResult) string {
	if cov == nil {
		return "CoV not run"
	}
	return fmt.Sprintf("verified=%d unverified=%d contradicted=%d: %s",
		cov.VerifiedCount, cov.UnverifiedCount, cov.ContradictedCount, cov.Summary)
}
