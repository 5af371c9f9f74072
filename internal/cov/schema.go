package cov

import (
	"researchengine/internal/schema"
)

func claimsSchema() schema.JSONSchema {
	claimItem := schema.NewBuilder("a single verifiable claim").
		AddString("claim_text", "exact span from the draft", true).
		AddStringEnum("claim_type", "category of verifiable fact", []string{
			"number", "date", "person", "organization", "event", "statistic", "quote",
		}, true).
		AddString("context", "surrounding sentence for disambiguation", false).
		NoAdditionalProperties().
		Build()

	return schema.NewBuilder("list of verifiable claims extracted from a draft").
		AddArray("claims", "the extracted claims", claimItem, true).
		NoAdditionalProperties().
		Build()
}

func verificationSchema() schema.JSONSchema {
	return schema.NewBuilder("verification outcome for a single claim").
		AddStringEnum("status", "verification outcome", []string{
			"verified", "unverified", "contradicted", "partially_verified",
		}, true).
		AddString("evidence", "quoted supporting or contradicting text", false).
		AddInteger("source_id", "1-based index of the source used", false).
		AddString("explanation", "why this status was chosen", false).
		AddStringEnum("confidence", "confidence in this verdict", []string{"low", "medium", "high"}, true).
		NoAdditionalProperties().
		Build()
}

func parseClaimsList(m map[string]any) *schema.ClaimsList {
	out := &schema.ClaimsList{}
	raw, ok := m["claims"].([]any)
	if !ok {
		return out
	}
	for _, item := range raw {
		cm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		claim := schema.Claim{
			ClaimText: asString(cm["claim_text"]),
			ClaimType: schema.ClaimType(asString(cm["claim_type"])),
			Context:   asString(cm["context"]),
		}
		out.Claims = append(out.Claims, claim)
	}
	return out
}

func parseVerificationResult(claim schema.Claim, m map[string]any) *schema.VerificationResult {
	r := &schema.VerificationResult{
		Claim:       claim,
		Status:      schema.VerificationStatus(asString(m["status"])),
		Explanation: asString(m["explanation"]),
		Confidence:  schema.ConfidenceLabel(asString(m["confidence"])),
	}
	if ev := asString(m["evidence"]); ev != "" {
		r.Evidence = &ev
	}
	if sid, ok := asInt(m["source_id"]); ok {
		r.SourceID = &sid
	}
	if r.Status == "" {
		r.Status = schema.StatusUnverified
	}
	if r.Confidence == "" {
		r.Confidence = schema.ConfidenceLow
	}
	return r
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
