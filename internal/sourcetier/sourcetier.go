// Package sourcetier implements the source-tier filter stage: it enriches
// retrieved candidates with their configured authority tier and applies
// mode-dependent gating, falling back from strict to discovery rules
// rather than returning an empty set outright, and only then raising
// errs.NoValidSources.
package sourcetier

import (
	"fmt"

	"researchengine/internal/config"
	"researchengine/internal/errs"
	"researchengine/internal/obslog"
	"researchengine/internal/schema"
)

// Filter applies tier enrichment and mode gating to items. Every item is
// always enriched with its tier. Only strict mode actually drops
// anything: discovery and monitor enrich and keep every item as-is. If
// strict gating leaves nothing, Filter retries once under discovery's
// wider ceiling before giving up.
func Filter(items []schema.SourceItem, mode schema.Mode, cfg *config.Config, logger obslog.QueryLogger) ([]schema.SourceItem, error) {
	mc, err := cfg.ModeConfigFor(mode)
	if err != nil {
		return nil, err
	}

	enriched := enrich(items, cfg)

	if mode != schema.ModeStrict {
		if len(enriched) == 0 {
			return nil, &errs.NoValidSources{Mode: string(mode), Considered: len(items)}
		}
		return enriched, nil
	}

	kept := applyGate(enriched, mc.MaxTier)
	if len(kept) > 0 {
		return kept, nil
	}

	discoveryMC, err := cfg.ModeConfigFor(schema.ModeDiscovery)
	if err == nil {
		fallback := applyGate(enriched, discoveryMC.MaxTier)
		if len(fallback) > 0 {
			if logger != nil {
				logger.Fallback("sourcetier", fmt.Sprintf("strict mode (max_tier=%d) produced zero sources; falling back to discovery (max_tier=%d)", mc.MaxTier, discoveryMC.MaxTier))
			}
			for i := range fallback {
				if fallback[i].ReasoningMetadata != nil {
					fallback[i].ReasoningMetadata.FallbackWarning = true
				}
			}
			return fallback, nil
		}
	}

	return nil, &errs.NoValidSources{Mode: string(mode), Considered: len(items)}
}

// enrich stamps each item with its reasoning_metadata: tier, type, and the
// originating site, using the configured tier map and defaulting to
// schema.TierUnknown for unconfigured sites.
func enrich(items []schema.SourceItem, cfg *config.Config) []schema.SourceItem {
	out := make([]schema.SourceItem, len(items))
	for i, item := range items {
		info := cfg.TierFor(item.Site)
		item.ReasoningMetadata = &schema.ReasoningMetadata{
			Tier:           info.Tier,
			Type:           info.Type,
			OriginalSource: item.Site,
		}
		item.Description = describeWithTier(item.Description, info)
		out[i] = item
	}
	return out
}

// describeWithTier prefixes an item's description with its tier/type, so
// downstream prompts rendering sources inline show the Analyst exactly
// what authority level it is reading, without a separate lookup.
func describeWithTier(desc string, info schema.SourceTierInfo) string {
	prefix := fmt.Sprintf("[Tier %d | %s] ", info.Tier, info.Type)
	return prefix + desc
}

// applyGate keeps items whose tier is within maxTier, preserving order.
func applyGate(items []schema.SourceItem, maxTier int) []schema.SourceItem {
	kept := make([]schema.SourceItem, 0, len(items))
	for _, item := range items {
		if item.ReasoningMetadata != nil && item.ReasoningMetadata.Tier <= maxTier {
			kept = append(kept, item)
		}
	}
	return kept
}
