package cov

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/llm"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
)

type fakeClient struct {
	extractResponse map[string]any
	verifyResponses []map[string]any
	calls           int
}

func (f *fakeClient) Ask(ctx context.Context, prompt string, s *schema.JSONSchema, level llm.Level, timeout time.Duration, maxLength int, params llm.QueryParams) (any, error) {
	f.calls++
	if f.calls == 1 {
		return f.extractResponse, nil
	}
	idx := f.calls - 2
	if idx < len(f.verifyResponses) {
		return f.verifyResponses[idx], nil
	}
	return map[string]any{"status": "unverified", "confidence": "low"}, nil
}

func TestRun_AggregatesVerificationOutcomes(t *testing.T) {
	fc := &fakeClient{
		extractResponse: map[string]any{
			"claims": []any{
				map[string]any{"claim_text": "the treaty was signed in 1998", "claim_type": "date"},
				map[string]any{"claim_text": "the population is 10 million", "claim_type": "statistic"},
			},
		},
		verifyResponses: []map[string]any{
			{"status": "verified", "confidence": "high", "source_id": 1},
			{"status": "contradicted", "confidence": "medium", "evidence": "source says 8 million"},
		},
	}

	v := New(fc, prompts.Default(), 5*time.Second, 2)
	result, err := v.Run(context.Background(), "draft text", "1. source one\n2. source two")
	require.NoError(t, err)

	assert.Equal(t, 1, result.VerifiedCount)
	assert.Equal(t, 1, result.ContradictedCount)
	assert.Contains(t, result.Summary, "REJECT")
}

func TestRun_NoClaimsExtracted(t *testing.T) {
	fc := &fakeClient{extractResponse: map[string]any{"claims": []any{}}}
	v := New(fc, prompts.Default(), 5*time.Second, 2)
	result, err := v.Run(context.Background(), "opinion only", "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.VerifiedCount)
	assert.Contains(t, result.Summary, "no verifiable claims")
}

func TestRun_ManyUnverifiedSuggestsWarn(t *testing.T) {
	fc := &fakeClient{
		extractResponse: map[string]any{
			"claims": []any{
				map[string]any{"claim_text": "a", "claim_type": "number"},
				map[string]any{"claim_text": "b", "claim_type": "number"},
				map[string]any{"claim_text": "c", "claim_type": "number"},
			},
		},
		verifyResponses: []map[string]any{
			{"status": "unverified", "confidence": "low"},
			{"status": "unverified", "confidence": "low"},
			{"status": "unverified", "confidence": "low"},
		},
	}
	v := New(fc, prompts.Default(), 5*time.Second, 1)
	result, err := v.Run(context.Background(), "draft", "sources")
	require.NoError(t, err)
	assert.Equal(t, 3, result.UnverifiedCount)
	assert.Contains(t, result.Summary, "WARN")
}
