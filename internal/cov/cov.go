// Package cov implements chain-of-verification: extract the draft's
// verifiable claims, then check each one independently against the
// source set, concurrently, joining before the pipeline moves on to the
// reasoning-chain analyzer.
package cov

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"researchengine/internal/llm"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
)

// Verifier runs the two-stage CoV protocol.
type Verifier struct {
	client    llm.Client
	library   *prompts.Library
	timeout   time.Duration
	maxConcurrency int
}

// New builds a Verifier. maxConcurrency bounds how many per-claim
// verification calls run at once within a single Run.
func New(client llm.Client, library *prompts.Library, timeout time.Duration, maxConcurrency int) *Verifier {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Verifier{client: client, library: library, timeout: timeout, maxConcurrency: maxConcurrency}
}

// Run extracts claims from draft, then verifies each concurrently against
// sourcesText, returning the aggregated CoVResult.
func (v *Verifier) Run(ctx context.Context, draft, sourcesText string) (*schema.CoVResult, error) {
	claims, err := v.extractClaims(ctx, draft)
	if err != nil {
		return nil, err
	}
	if len(claims.Claims) == 0 {
		return &schema.CoVResult{Summary: "no verifiable claims extracted"}, nil
	}

	results := make([]schema.VerificationResult, len(claims.Claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.maxConcurrency)

	for i, claim := range claims.Claims {
		i, claim := i, claim
		g.Go(func() error {
			r, err := v.verifyClaim(gctx, claim, sourcesText)
			if err != nil {
				return err
			}
			results[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(results), nil
}

func (v *Verifier) extractClaims(ctx context.Context, draft string) (*schema.ClaimsList, error) {
	tmpl, err := v.library.FindPrompt("cov_extract", "")
	if err != nil {
		return nil, err
	}
	prompt := prompts.FillPrompt(tmpl.Body, map[string]string{"draft": draft})

	s := claimsSchema()
	raw, err := v.client.Ask(ctx, prompt, &s, llm.LevelLow, v.timeout, 2048, nil)
	if err != nil {
		return nil, err
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return &schema.ClaimsList{}, nil
	}
	return parseClaimsList(m), nil
}

func (v *Verifier) verifyClaim(ctx context.Context, claim schema.Claim, sourcesText string) (*schema.VerificationResult, error) {
	tmpl, err := v.library.FindPrompt("cov_verify", "")
	if err != nil {
		return nil, err
	}
	prompt := prompts.FillPrompt(tmpl.Body, map[string]string{
		"claim":   claim.ClaimText,
		"sources": sourcesText,
	})

	s := verificationSchema()
	raw, err := v.client.Ask(ctx, prompt, &s, llm.LevelLow, v.timeout, 1024, nil)
	if err != nil {
		return nil, err
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return &schema.VerificationResult{Claim: claim, Status: schema.StatusUnverified, Confidence: schema.ConfidenceLow}, nil
	}
	return parseVerificationResult(claim, m), nil
}

// summarize aggregates per-claim results and drafts the escalation
// guidance the Critic reads: any contradiction suggests REJECT; three or
// more unverified claims suggests WARN.
func summarize(results []schema.VerificationResult) *schema.CoVResult {
	r := &schema.CoVResult{Results: results}
	for _, res := range results {
		switch res.Status {
		case schema.StatusVerified:
			r.VerifiedCount++
		case schema.StatusUnverified:
			r.UnverifiedCount++
		case schema.StatusContradicted:
			r.ContradictedCount++
		case schema.StatusPartiallyVerified:
			// counted in totals only; not its own escalation bucket
		}
	}

	switch {
	case r.ContradictedCount > 0:
		r.Summary = fmt.Sprintf("%d claim(s) contradicted by sources; recommend REJECT", r.ContradictedCount)
	case r.UnverifiedCount >= 3:
		r.Summary = fmt.Sprintf("%d claims unverified; recommend WARN", r.UnverifiedCount)
	default:
		r.Summary = fmt.Sprintf("%d verified, %d unverified, %d contradicted", r.VerifiedCount, r.UnverifiedCount, r.ContradictedCount)
	}
	return r
}
