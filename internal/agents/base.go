// Package agents implements the four LLM-backed pipeline stages
// (Clarification, Analyst, Critic, Writer) on top of a shared BaseAgent
// contract: render the prompt, call ask_llm, validate the result against
// the stage's schema, and retry with backoff on a validation failure,
// surfacing errs.ValidationError only once the retry budget is spent.
package agents

import (
	"context"
	"fmt"
	"time"

	"researchengine/internal/errs"
	"researchengine/internal/llm"
	"researchengine/internal/obslog"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
)

// BaseAgent holds what every stage needs to talk to the model and log its
// own lifecycle; concrete agents embed it.
type BaseAgent struct {
	Name       string
	Client     llm.Client
	Library    *prompts.Library
	MaxRetries int
	Timeout    time.Duration
}

// Call renders promptName with vars, asks the model under jsonSchema at
// level, and parses the raw response into a map (running a string
// response through llm.Repair first), retrying on a shape failure up to
// MaxRetries attempts in all, waiting 1s, 2s, 4s, ... before each retry.
// An empty {} response is treated as a
// validation failure, not a successful empty answer — the contract never
// allows an agent to legitimately return nothing.
func (a *BaseAgent) Call(ctx context.Context, logger obslog.QueryLogger, promptName string, vars map[string]string, jsonSchema schema.JSONSchema, level llm.Level) (map[string]any, error) {
	tmpl, err := a.Library.FindPrompt(promptName, vars["site"])
	if err != nil {
		return nil, err
	}
	prompt := prompts.FillPrompt(tmpl.Body, vars)

	start := time.Now()
	if logger != nil {
		logger.StageStart(a.Name)
	}

	var lastErr error
	retries := a.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	for attempt := 1; attempt <= retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-2)) * time.Second):
			}
		}

		raw, err := a.Client.Ask(ctx, prompt, &jsonSchema, level, a.Timeout, 4096, nil)
		if err != nil {
			lastErr = err
			if _, isTimeout := err.(*errs.LLMTimeout); isTimeout {
				continue
			}
			break
		}

		result, ok := raw.(map[string]any)
		if s, isString := raw.(string); isString {
			result, ok = llm.Repair(s)
		}
		if !ok || len(result) == 0 {
			lastErr = &errs.ValidationError{Stage: a.Name, Attempt: attempt, Cause: fmt.Errorf("empty or non-object response")}
			continue
		}

		if missing := missingRequired(result, jsonSchema.Required); len(missing) > 0 {
			lastErr = &errs.ValidationError{Stage: a.Name, Attempt: attempt, Cause: fmt.Errorf("missing required fields: %v", missing)}
			continue
		}

		if logger != nil {
			logger.StageEnd(a.Name, time.Since(start), attempt-1)
		}
		return result, nil
	}

	if logger != nil {
		logger.StageEnd(a.Name, time.Since(start), retries)
	}
	return nil, lastErr
}

func missingRequired(m map[string]any, required []string) []string {
	var missing []string
	for _, field := range required {
		if _, ok := m[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}
