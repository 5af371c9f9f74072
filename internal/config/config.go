// Package config loads the reasoning pipeline's configuration surface:
// per-mode gating rules, source-tier assignments, feature flags, and the
// MMR post-ranking parameters. Layered with viper: built-in defaults, an
// optional config file, then environment variables (prefix RE_), in
// ascending precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"researchengine/internal/errs"
	"researchengine/internal/schema"
)

// Config is the full configuration surface of spec §6.
type Config struct {
	ModeConfigs   map[string]schema.ModeConfig      `mapstructure:"reasoning_mode_configs"`
	SourceTiers   map[string]schema.SourceTierInfo  `mapstructure:"reasoning_source_tiers"`
	Features      Features                          `mapstructure:"reasoning_params_features"`
	Thresholds    CritiqueThresholds                `mapstructure:"reasoning_params_critique_thresholds"`
	MMR           MMRParams                         `mapstructure:"mmr_params"`
	LLM           LLMConfig                         `mapstructure:"llm"`
	Logging       LoggingConfig                     `mapstructure:"logging"`
}

// Features toggles optional pipeline behavior.
type Features struct {
	StructuredCritique bool `mapstructure:"structured_critique"`
	CoVEnabled         bool `mapstructure:"cov_enabled"`
	PlanAndWrite       bool `mapstructure:"plan_and_write"`
}

// CritiqueThresholds tunes the Critic's auto-escalation rule.
type CritiqueThresholds struct {
	CriticalWeaknessCount int `mapstructure:"critical_weakness_count"`
}

// MMRParams configures the post-ranking stage.
type MMRParams struct {
	Enabled   bool    `mapstructure:"enabled"`
	Lambda    float64 `mapstructure:"lambda"`
	Threshold float64 `mapstructure:"threshold"`
}

// LLMConfig names the model ids behind the "low"/"high" ask_llm levels and
// the default per-call timeout and retry budget.
type LLMConfig struct {
	LowModel   string `mapstructure:"low_model"`
	HighModel  string `mapstructure:"high_model"`
	MaxRetries int    `mapstructure:"max_retries"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	CacheEntries int  `mapstructure:"cache_entries"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Default returns the built-in configuration: the three named modes with
// their tier ceilings and required sections, an empty source-tier map
// (populated by a config file or caller), and conservative feature/
// threshold/MMR defaults.
func Default() *Config {
	return &Config{
		ModeConfigs: map[string]schema.ModeConfig{
			string(schema.ModeStrict): {
				MaxTier:          3,
				RequiredSections: []string{"summary", "analysis", "sources"},
				AllowSpeculation: false,
			},
			string(schema.ModeDiscovery): {
				MaxTier:          5,
				RequiredSections: []string{"summary", "analysis"},
				AllowSpeculation: true,
			},
			string(schema.ModeMonitor): {
				MaxTier:          6,
				RequiredSections: []string{"summary"},
				AllowSpeculation: true,
			},
		},
		SourceTiers: map[string]schema.SourceTierInfo{},
		Features: Features{
			StructuredCritique: true,
			CoVEnabled:         true,
			PlanAndWrite:       false,
		},
		Thresholds: CritiqueThresholds{
			CriticalWeaknessCount: 2,
		},
		MMR: MMRParams{
			Enabled:   true,
			Lambda:    0.7,
			Threshold: 0.15,
		},
		LLM: LLMConfig{
			LowModel:        "claude-haiku-4-5",
			HighModel:       "claude-sonnet-4-5",
			MaxRetries:      3,
			TimeoutSeconds:  60,
			CacheEntries:    512,
			CacheTTLSeconds: 600,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load builds a viper instance seeded with Default's values, optionally
// merges a config file at path (skipped if path is empty), applies
// RE_-prefixed environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	if err := bindDefaults(v, def); err != nil {
		return nil, &errs.ConfigError{Field: "defaults", Reason: err.Error()}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &errs.ConfigError{Field: "config_file", Reason: err.Error()}
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &errs.ConfigError{Field: "unmarshal", Reason: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindDefaults seeds viper's default layer from a populated Config so
// environment-only overrides still resolve a full value set.
func bindDefaults(v *viper.Viper, def *Config) error {
	v.SetDefault("reasoning_mode_configs", toModeConfigMap(def.ModeConfigs))
	v.SetDefault("reasoning_source_tiers", def.SourceTiers)
	v.SetDefault("reasoning_params_features.structured_critique", def.Features.StructuredCritique)
	v.SetDefault("reasoning_params_features.cov_enabled", def.Features.CoVEnabled)
	v.SetDefault("reasoning_params_features.plan_and_write", def.Features.PlanAndWrite)
	v.SetDefault("reasoning_params_critique_thresholds.critical_weakness_count", def.Thresholds.CriticalWeaknessCount)
	v.SetDefault("mmr_params.enabled", def.MMR.Enabled)
	v.SetDefault("mmr_params.lambda", def.MMR.Lambda)
	v.SetDefault("mmr_params.threshold", def.MMR.Threshold)
	v.SetDefault("llm.low_model", def.LLM.LowModel)
	v.SetDefault("llm.high_model", def.LLM.HighModel)
	v.SetDefault("llm.max_retries", def.LLM.MaxRetries)
	v.SetDefault("llm.timeout_seconds", def.LLM.TimeoutSeconds)
	v.SetDefault("llm.cache_entries", def.LLM.CacheEntries)
	v.SetDefault("llm.cache_ttl_seconds", def.LLM.CacheTTLSeconds)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.json", def.Logging.JSON)
	return nil
}

func toModeConfigMap(m map[string]schema.ModeConfig) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = map[string]any{
			"max_tier":          v.MaxTier,
			"required_sections": v.RequiredSections,
			"allow_speculation": v.AllowSpeculation,
		}
	}
	return out
}

// Validate enforces the configuration invariants the pipeline depends on:
// every mode the pipeline can run in must have a ModeConfig entry, and
// numeric parameters must be in their documented ranges.
func (c *Config) Validate() error {
	for _, m := range []schema.Mode{schema.ModeStrict, schema.ModeDiscovery, schema.ModeMonitor} {
		if _, ok := c.ModeConfigs[string(m)]; !ok {
			return &errs.ConfigError{Field: "reasoning_mode_configs", Reason: fmt.Sprintf("missing entry for mode %q", m)}
		}
	}
	if c.MMR.Lambda < 0 || c.MMR.Lambda > 1 {
		return &errs.ConfigError{Field: "mmr_params.lambda", Reason: "must be in [0,1]"}
	}
	if c.Thresholds.CriticalWeaknessCount < 1 {
		return &errs.ConfigError{Field: "reasoning_params_critique_thresholds.critical_weakness_count", Reason: "must be >= 1"}
	}
	if c.LLM.MaxRetries < 0 {
		return &errs.ConfigError{Field: "llm.max_retries", Reason: "must be >= 0"}
	}
	return nil
}

// ModeConfigFor returns the ModeConfig for m, or an error if the mode is
// unconfigured.
func (c *Config) ModeConfigFor(m schema.Mode) (schema.ModeConfig, error) {
	mc, ok := c.ModeConfigs[string(m)]
	if !ok {
		return schema.ModeConfig{}, &errs.ConfigError{Field: "reasoning_mode_configs", Reason: fmt.Sprintf("unknown mode %q", m)}
	}
	return mc, nil
}

// TierFor looks up the configured tier/type for a site, defaulting to
// schema.TierUnknown when the site has no explicit assignment.
func (c *Config) TierFor(site string) schema.SourceTierInfo {
	if info, ok := c.SourceTiers[site]; ok {
		return info
	}
	return schema.SourceTierInfo{Tier: schema.TierUnknown, Type: "unknown"}
}
