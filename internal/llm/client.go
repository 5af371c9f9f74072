// Package llm implements the ask_llm external collaborator contract: a
// schema-constrained, retriable call to a language model, plus the bounded
// JSON repair cascade every agent relies on before giving up and raising
// errs.ValidationError.
package llm

import (
	"context"
	"time"

	"researchengine/internal/schema"
)

// Level selects which model an ask_llm call targets.
type Level string

const (
	LevelLow  Level = "low"
	LevelHigh Level = "high"
)

// QueryParams carries free-form per-call tuning the caller wants recorded
// alongside the response (temperature, top_p, etc.) without growing the
// Client interface's signature every time a new knob appears.
type QueryParams map[string]any

// Client is the ask_llm(prompt, schema, level, timeout, max_length,
// query_params) contract. A successful call returns either a string (when
// schema is nil) or a map[string]any decoded from the model's structured
// output. Implementations do not check schema's required fields or run
// the repair cascade in repair.go; the caller does both (see
// agents.BaseAgent.Call).
type Client interface {
	Ask(ctx context.Context, prompt string, jsonSchema *schema.JSONSchema, level Level, timeout time.Duration, maxLength int, params QueryParams) (any, error)
}
