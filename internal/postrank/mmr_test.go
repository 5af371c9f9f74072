package postrank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/config"
	"researchengine/internal/llm"
	"researchengine/internal/schema"
)

func TestRerank_DisabledReturnsUnchanged(t *testing.T) {
	items := []schema.SourceItem{{URL: "a"}, {URL: "b"}}
	out := Rerank(items, []float32{1, 0}, config.MMRParams{Enabled: false}, nil)
	assert.Equal(t, items, out)
}

func TestRerank_BelowThresholdReturnsUnchanged(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "a", Vector: []float32{0, 1}},
		{URL: "b", Vector: []float32{0, 1}},
	}
	out := Rerank(items, []float32{1, 0}, config.MMRParams{Enabled: true, Lambda: 0.5, Threshold: 0.9}, nil)
	assert.Equal(t, items, out)
}

func TestRerank_MostRelevantItemFirst(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "redundant-1", Vector: []float32{1, 0}},
		{URL: "redundant-2", Vector: []float32{1, 0}},
		{URL: "diverse", Vector: []float32{0, 1}},
	}
	out := Rerank(items, []float32{1, 0}, config.MMRParams{Enabled: true, Lambda: 0.5, Threshold: 0.1}, nil)
	require.Len(t, out, 3)
	assert.Equal(t, "redundant-1", out[0].URL)
}

func TestStripVectors_RemovesVectorField(t *testing.T) {
	items := []schema.SourceItem{{URL: "a", Vector: []float32{1, 2, 3}}}
	out := StripVectors(items)
	assert.Nil(t, out[0].Vector)
	assert.NotNil(t, items[0].Vector) // original untouched
}

type stubSummarizeClient struct{ response string }

func (s *stubSummarizeClient) Ask(ctx context.Context, prompt string, schm *schema.JSONSchema, level llm.Level, timeout time.Duration, maxLength int, params llm.QueryParams) (any, error) {
	return s.response, nil
}

func TestSummarize_BoundsLength(t *testing.T) {
	client := &stubSummarizeClient{response: "this is a long summary that exceeds the bound"}
	items := []schema.SourceItem{{Title: "Source A"}, {Title: "Source B"}}
	out, err := Summarize(context.Background(), client, items, 5, 10)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 10)
}
