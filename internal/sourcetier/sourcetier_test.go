package sourcetier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/config"
	"researchengine/internal/errs"
	"researchengine/internal/schema"
)

func cfgWithTiers() *config.Config {
	cfg := config.Default()
	cfg.SourceTiers = map[string]schema.SourceTierInfo{
		"nature.com":     {Tier: 1, Type: "peer_reviewed"},
		"reuters.com":    {Tier: 2, Type: "wire_service"},
		"blogspot.com":   {Tier: 5, Type: "blog"},
		"llm-knowledge":  {Tier: 6, Type: schema.SourceTypeLLMKnowledge},
	}
	return cfg
}

func TestFilter_StrictKeepsOnlyHighTier(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "a", Site: "nature.com", Description: "study"},
		{URL: "b", Site: "blogspot.com", Description: "opinion"},
	}
	kept, err := Filter(items, schema.ModeStrict, cfgWithTiers(), nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].URL)
	assert.Contains(t, kept[0].Description, "[Tier 1 | peer_reviewed]")
}

func TestFilter_StrictFallsBackToDiscovery(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "b", Site: "blogspot.com", Description: "opinion"},
	}
	kept, err := Filter(items, schema.ModeStrict, cfgWithTiers(), nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.True(t, kept[0].ReasoningMetadata.FallbackWarning)
}

func TestFilter_NoValidSourcesWhenEverythingBeyondDiscovery(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "c", Site: "unknown-site.example", Description: "x"},
	}
	_, err := Filter(items, schema.ModeStrict, cfgWithTiers(), nil)
	require.Error(t, err)
	var nvs *errs.NoValidSources
	require.ErrorAs(t, err, &nvs)
}

func TestFilter_MonitorAllowsTier6(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "d", Site: "llm-knowledge", Description: "fact"},
	}
	kept, err := Filter(items, schema.ModeMonitor, cfgWithTiers(), nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, schema.SourceTypeLLMKnowledge, kept[0].ReasoningMetadata.Type)
}

func TestFilter_DiscoveryKeepsUnknownTierSources(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "e", Site: "unknown-site.example", Description: "x"},
	}
	kept, err := Filter(items, schema.ModeDiscovery, cfgWithTiers(), nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, schema.TierUnknown, kept[0].ReasoningMetadata.Tier)
}

func TestFilter_MonitorKeepsUnknownTierSources(t *testing.T) {
	items := []schema.SourceItem{
		{URL: "f", Site: "unknown-site.example", Description: "x"},
	}
	kept, err := Filter(items, schema.ModeMonitor, cfgWithTiers(), nil)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, schema.TierUnknown, kept[0].ReasoningMetadata.Tier)
}

func TestFilter_UnknownModeErrors(t *testing.T) {
	_, err := Filter(nil, schema.Mode("bogus"), cfgWithTiers(), nil)
	require.Error(t, err)
	var cerr *errs.ConfigError
	require.ErrorAs(t, err, &cerr)
}
