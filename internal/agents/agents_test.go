package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/chainanalysis"
	"researchengine/internal/errs"
	"researchengine/internal/llm"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
)

type scriptedClient struct {
	responses []any
	idx       int
}

func (s *scriptedClient) Ask(ctx context.Context, prompt string, jsonSchema *schema.JSONSchema, level llm.Level, timeout time.Duration, maxLength int, params llm.QueryParams) (any, error) {
	if s.idx >= len(s.responses) {
		return map[string]any{}, nil
	}
	r := s.responses[s.idx]
	s.idx++
	return r, nil
}

func newBase(client llm.Client) *BaseAgent {
	return &BaseAgent{Client: client, Library: prompts.Default(), MaxRetries: 2, Timeout: 5 * time.Second}
}

func TestClarification_ReturnsBoundedQuestions(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{"questions": []any{
			map[string]any{
				"clarification_type": "time",
				"question":           "which period?",
				"required":           true,
				"options": []any{
					map[string]any{"label": "last year"},
					map[string]any{"label": "all time"},
				},
			},
		}},
	}}
	c := NewClarification(newBase(client))
	qs, err := c.Run(context.Background(), nil, "how has X changed")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, schema.ClarifyTime, qs[0].ClarificationType)
	assert.Len(t, qs[0].Options, 2)
}

func TestAnalyst_ParsesGraphAndGaps(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"draft": "X happened because Y",
			"argument_graph": []any{
				map[string]any{"node_id": "n1", "claim": "Y is true", "confidence": "high", "confidence_score": 8.0},
				map[string]any{"node_id": "n2", "claim": "X follows from Y", "confidence": "medium", "depends_on": []any{"n1"}},
			},
			"citations": []any{1.0, 2.0},
			"gap_resolutions": []any{
				map[string]any{"gap": "no source for Z", "resolution": "general knowledge", "source_type": "llm_knowledge"},
			},
		},
	}}
	a := NewAnalyst(newBase(client))
	out, err := a.Run(context.Background(), nil, "why did X happen", "1. source\n2. source", schema.ModeDiscovery)
	require.NoError(t, err)
	assert.Equal(t, "X happened because Y", out.Draft)
	require.Len(t, out.ArgumentGraph, 2)
	assert.Equal(t, []string{"n1"}, out.ArgumentGraph[1].DependsOn)
	require.Len(t, out.GapResolutions, 1)
	assert.Equal(t, "llm_knowledge", out.GapResolutions[0].SourceType)
}

func TestCritic_AutoEscalatesOnCycle(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"status":          "APPROVE",
			"critique":        "looks fine",
			"mode_compliance": true,
		},
	}}
	critic := NewCritic(newBase(client), 2, true)
	analysis := &chainanalysis.Analysis{HasCycles: true}
	review, err := critic.Run(context.Background(), nil, "why did X happen", "draft", schema.ModeStrict, analysis, &schema.CoVResult{})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusReject, review.Status)
	assert.True(t, review.AutoEscalated)
}

func TestCritic_CycleNotEscalatedOutsideStrictMode(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"status":          "APPROVE",
			"critique":        "looks fine",
			"mode_compliance": true,
		},
	}}
	critic := NewCritic(newBase(client), 2, true)
	analysis := &chainanalysis.Analysis{HasCycles: true}
	review, err := critic.Run(context.Background(), nil, "why did X happen", "draft", schema.ModeDiscovery, analysis, &schema.CoVResult{})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusApprove, review.Status)
	assert.False(t, review.AutoEscalated)
}

func TestCritic_WeaknessCountEscalationGatedOnStructuredCritique(t *testing.T) {
	weaknesses := []any{
		map[string]any{"severity": "critical", "category": "c", "description": "d", "suggested_fix": "f"},
		map[string]any{"severity": "critical", "category": "c2", "description": "d2", "suggested_fix": "f2"},
	}
	client := &scriptedClient{responses: []any{
		map[string]any{
			"status":                "APPROVE",
			"critique":              "mostly fine",
			"mode_compliance":       true,
			"structured_weaknesses": weaknesses,
		},
	}}
	critic := NewCritic(newBase(client), 2, false)
	review, err := critic.Run(context.Background(), nil, "q", "draft", schema.ModeDiscovery, &chainanalysis.Analysis{}, &schema.CoVResult{})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusApprove, review.Status)
	assert.False(t, review.AutoEscalated)
}

func TestCritic_NoEscalationWhenClean(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"status":          "APPROVE",
			"critique":        "solid",
			"mode_compliance": true,
		},
	}}
	critic := NewCritic(newBase(client), 2, true)
	review, err := critic.Run(context.Background(), nil, "q", "draft", schema.ModeStrict, &chainanalysis.Analysis{}, &schema.CoVResult{})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusApprove, review.Status)
	assert.False(t, review.AutoEscalated)
}

func TestWriter_RejectsCitationOutsideWhitelist(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"final_report":      "report text",
			"sources_used":      []any{1.0, 99.0},
			"confidence_level":  "High",
		},
	}}
	w := NewWriter(newBase(client))
	review := &schema.CriticReview{Status: schema.StatusApprove}
	_, err := w.Run(context.Background(), nil, "draft", review, Options{CitationWhitelist: []int{1, 2, 3}})
	require.Error(t, err)
	var wv *errs.WhitelistViolation
	require.ErrorAs(t, err, &wv)
	assert.Equal(t, []int{99}, wv.InvalidIDs)
}

func TestWriter_ConfidenceNeverExceedsCriticStatus(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{
			"final_report":     "report text",
			"sources_used":     []any{1.0},
			"confidence_level": "High",
		},
	}}
	w := NewWriter(newBase(client))
	review := &schema.CriticReview{Status: schema.StatusWarn}
	out, err := w.Run(context.Background(), nil, "draft", review, Options{CitationWhitelist: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, schema.ConfidenceLevelMedium, out.ConfidenceLevel)
}

func TestBaseAgent_RetriesOnEmptyResponse(t *testing.T) {
	client := &scriptedClient{responses: []any{
		map[string]any{},
		map[string]any{"questions": []any{}},
	}}
	c := NewClarification(newBase(client))
	qs, err := c.Run(context.Background(), nil, "anything")
	require.NoError(t, err)
	assert.Empty(t, qs)
	assert.Equal(t, 2, client.idx)
}
