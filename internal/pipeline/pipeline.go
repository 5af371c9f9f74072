// Package pipeline wires the eight reasoning stages into the single
// Actor-Critic pipeline run, in this order: Clarification, Source-Tier
// Filter, Analyst, Chain-of-Verification, Reasoning-Chain Analyzer,
// Critic, Post-Ranking, Writer. Nothing is shared across queries; Run
// constructs fresh per-query state every call.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"researchengine/internal/agents"
	"researchengine/internal/chainanalysis"
	"researchengine/internal/config"
	"researchengine/internal/cov"
	"researchengine/internal/errs"
	"researchengine/internal/llm"
	"researchengine/internal/obslog"
	"researchengine/internal/postrank"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
	"researchengine/internal/sourcetier"

	"github.com/google/uuid"
)

// Retriever is the external collaborator that turns a query (and
// optional clarification answers) into a candidate source list. It is
// the one stage this package never implements itself.
type Retriever interface {
	Retrieve(ctx context.Context, query string, mode schema.Mode) ([]schema.SourceItem, error)
}

// Pipeline holds the long-lived, query-independent collaborators: the
// LLM client, config, retriever, prompt library, and the four agents and
// the CoV verifier built on top of them.
type Pipeline struct {
	cfg       *config.Config
	client    llm.Client
	retriever Retriever
	library   *prompts.Library

	clarification *agents.Clarification
	analyst       *agents.Analyst
	critic        *agents.Critic
	writer        *agents.Writer
	verifier      *cov.Verifier
}

// New builds a Pipeline from its collaborators. It holds no logger: each
// Run call takes its own per-query obslog.QueryLogger, which may be nil
// (tests pass nil to keep output quiet).
func New(cfg *config.Config, client llm.Client, retriever Retriever) *Pipeline {
	library := prompts.Default()
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	newBase := func(name string) *agents.BaseAgent {
		return &agents.BaseAgent{Name: name, Client: client, Library: library, MaxRetries: cfg.LLM.MaxRetries, Timeout: timeout}
	}

	return &Pipeline{
		cfg:           cfg,
		client:        client,
		retriever:     retriever,
		library:       library,
		clarification: agents.NewClarification(newBase("clarification")),
		analyst:       agents.NewAnalyst(newBase("analyst")),
		critic:        agents.NewCritic(newBase("critic"), cfg.Thresholds.CriticalWeaknessCount, cfg.Features.StructuredCritique),
		writer:        agents.NewWriter(newBase("writer")),
		verifier:      cov.New(client, library, timeout, 4),
	}
}

// Result is everything a caller gets back from one Run: the final
// report plus enough of the intermediate state to audit how the pipeline
// reached it.
type Result struct {
	Questions     []schema.Question
	Sources       []schema.SourceItem
	Analysis      *schema.AnalystOutput
	GraphAnalysis *chainanalysis.Analysis
	CoV           *schema.CoVResult
	Critique      *schema.CriticReview
	Report        *schema.WriterOutput
}

// Run executes the full pipeline for query under mode. If the
// Clarification stage returns any required question, Run returns early
// with just Questions populated — the caller is expected to re-invoke Run
// once those are answered and folded into query.
func Run(ctx context.Context, p *Pipeline, logger obslog.QueryLogger, query string, mode schema.Mode) (*Result, error) {
	mc, err := p.cfg.ModeConfigFor(mode)
	if err != nil {
		return nil, err
	}

	questions, err := p.clarification.Run(ctx, logger, query)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if q.Required {
			return &Result{Questions: questions}, nil
		}
	}

	candidates, err := p.retriever.Retrieve(ctx, query, mode)
	if err != nil {
		return nil, err
	}

	sources, err := sourcetier.Filter(candidates, mode, p.cfg, logger)
	if err != nil {
		return nil, err
	}

	sourcesText := agents.RenderSources(postrank.StripVectors(sources))

	analysis, err := p.analyst.Run(ctx, logger, query, sourcesText, mode)
	if err != nil {
		return nil, err
	}
	if invalid := agents.ValidCitations(analysis.Citations, len(sources)); len(invalid) > 0 {
		return nil, &errs.ValidationError{Stage: "analyst", Attempt: 1, Cause: fmt.Errorf("citations outside source range: %v", invalid)}
	}

	var covResult *schema.CoVResult
	if p.cfg.Features.CoVEnabled {
		covResult, err = p.verifier.Run(ctx, analysis.Draft, sourcesText)
		var covTimeout *errs.LLMTimeout
		if errors.As(err, &covTimeout) {
			if logger != nil {
				logger.Fallback("cov", err.Error())
			}
			covResult, err = &schema.CoVResult{Summary: "cov timed out; claims not verified"}, nil
		}
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.CoVCounts(covResult.VerifiedCount, covResult.UnverifiedCount, covResult.ContradictedCount)
		}
	} else {
		covResult = &schema.CoVResult{Summary: "cov disabled"}
	}

	argGraph := &schema.ArgumentGraph{Nodes: analysis.ArgumentGraph}
	graphAnalysis := chainanalysis.Build(argGraph, nil)

	review, err := p.critic.Run(ctx, logger, query, analysis.Draft, mode, graphAnalysis, covResult)
	var criticTimeout *errs.LLMTimeout
	if errors.As(err, &criticTimeout) {
		if logger != nil {
			logger.Fallback("critic", err.Error())
		}
		review, err = &schema.CriticReview{Status: schema.StatusWarn, Critique: "critic timed out; draft not reviewed"}, nil
	}
	if err != nil {
		return nil, err
	}
	graphAnalysis.RefineCriticalNodes(argGraph, review.StructuredWeaknesses)

	// MMR reranks the source set for the audit trail the caller sees;
	// the Writer still validates sources_used against the Analyst's
	// original citation whitelist regardless of the new ordering.
	sources = postrank.Rerank(sources, nil, p.cfg.MMR, logger)

	report, err := p.writer.Run(ctx, logger, analysis.Draft, review, agents.Options{
		Mode:              mode,
		RequiredSections:  mc.RequiredSections,
		AllowSpeculation:  mc.AllowSpeculation,
		PlanAndWrite:      p.cfg.Features.PlanAndWrite,
		CitationWhitelist: analysis.Citations,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Questions:     questions,
		Sources:       sources,
		Analysis:      analysis,
		GraphAnalysis: graphAnalysis,
		CoV:           covResult,
		Critique:      review,
		Report:        report,
	}, nil
}

// NewQueryID mints a unique id used to scope a run's QueryLogger.
func NewQueryID() string {
	return uuid.New().String()
}
