package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchengine/internal/schema"
)

func TestDefault_HasAllModes(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	for _, m := range []schema.Mode{schema.ModeStrict, schema.ModeDiscovery, schema.ModeMonitor} {
		mc, err := cfg.ModeConfigFor(m)
		require.NoError(t, err)
		assert.NotEmpty(t, mc.RequiredSections)
	}
}

func TestDefault_ModeTierOrdering(t *testing.T) {
	cfg := Default()
	strict, _ := cfg.ModeConfigFor(schema.ModeStrict)
	discovery, _ := cfg.ModeConfigFor(schema.ModeDiscovery)
	monitor, _ := cfg.ModeConfigFor(schema.ModeMonitor)

	assert.Less(t, strict.MaxTier, discovery.MaxTier)
	assert.Less(t, discovery.MaxTier, monitor.MaxTier)
	assert.False(t, strict.AllowSpeculation)
	assert.True(t, monitor.AllowSpeculation)
}

func TestLoad_NoFile_UsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().MMR.Lambda, cfg.MMR.Lambda)
	assert.Equal(t, Default().Thresholds.CriticalWeaknessCount, cfg.Thresholds.CriticalWeaknessCount)
}

func TestValidate_RejectsMissingMode(t *testing.T) {
	cfg := Default()
	delete(cfg.ModeConfigs, string(schema.ModeStrict))
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reasoning_mode_configs")
}

func TestValidate_RejectsBadLambda(t *testing.T) {
	cfg := Default()
	cfg.MMR.Lambda = 1.5
	err := cfg.Validate()
	require.Error(t, err)
}

func TestTierFor_UnknownSiteDefaultsToTierUnknown(t *testing.T) {
	cfg := Default()
	info := cfg.TierFor("some-never-configured-site.example")
	assert.Equal(t, schema.TierUnknown, info.Tier)
}

func TestTierFor_ConfiguredSite(t *testing.T) {
	cfg := Default()
	cfg.SourceTiers["nature.com"] = schema.SourceTierInfo{Tier: 1, Type: "peer_reviewed"}
	info := cfg.TierFor("nature.com")
	assert.Equal(t, 1, info.Tier)
	assert.Equal(t, "peer_reviewed", info.Type)
}
