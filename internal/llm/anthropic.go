package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"researchengine/internal/errs"
	"researchengine/internal/schema"
	"researchengine/pkg/cache"
)

// AnthropicClient implements Client against the real Anthropic messages
// API, with an LRU response cache keyed on (level, prompt, schema shape)
// so a retried agent call that hits an identical prompt doesn't re-pay a
// full model round trip.
type AnthropicClient struct {
	api       anthropic.Client
	lowModel  string
	highModel string
	cache     *cache.LRU[string, any]
}

// NewAnthropicClient builds a client from an API key and the configured
// low/high model ids. A cacheEntries of zero leaves the response cache
// unbounded and a cacheTTL of zero keeps entries until evicted; neither
// disables caching.
func NewAnthropicClient(apiKey, lowModel, highModel string, cacheEntries int, cacheTTL time.Duration) *AnthropicClient {
	return &AnthropicClient{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		lowModel:  lowModel,
		highModel: highModel,
		cache: cache.New[string, any](&cache.Config{
			MaxEntries: cacheEntries,
			TTL:        cacheTTL,
		}),
	}
}

func (c *AnthropicClient) modelFor(level Level) string {
	if level == LevelHigh {
		return c.highModel
	}
	return c.lowModel
}

// Ask implements Client. When jsonSchema is non-nil, the model is forced
// to emit a single matching tool call (Anthropic's structured-output
// idiom); the tool call's input is what's returned. No repair is applied
// here: input that does not decode as an object yields an empty map.
func (c *AnthropicClient) Ask(ctx context.Context, prompt string, jsonSchema *schema.JSONSchema, level Level, timeout time.Duration, maxLength int, params QueryParams) (any, error) {
	cacheKey := c.keyFor(prompt, jsonSchema, level)
	if v, ok := c.cache.Get(cacheKey); ok {
		return v, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := int64(maxLength)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelFor(level)),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if jsonSchema != nil {
		req.Tools = []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        "emit_result",
					Description: anthropic.String(jsonSchema.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: schemaPropertiesToAny(jsonSchema),
					},
				},
			},
		}
		req.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: "emit_result"},
		}
	}

	msg, err := c.api.Messages.New(callCtx, req)
	if err != nil {
		if callCtx.Err() != nil {
			return nil, &errs.LLMTimeout{Stage: "llm", Timeout: timeout.String()}
		}
		return nil, fmt.Errorf("anthropic call failed: %w", err)
	}

	var result any
	if jsonSchema != nil {
		result = extractToolInput(msg)
	} else {
		result = extractText(msg)
	}

	c.cache.Set(cacheKey, result)
	return result, nil
}

func (c *AnthropicClient) keyFor(prompt string, jsonSchema *schema.JSONSchema, level Level) string {
	shape := ""
	if jsonSchema != nil {
		shape = jsonSchema.Type + ":" + jsonSchema.Description
	}
	return string(level) + "|" + shape + "|" + prompt
}

func schemaPropertiesToAny(s *schema.JSONSchema) map[string]any {
	b := schema.NewBuilder(s.Description)
	for name, prop := range s.Properties {
		switch prop.Type {
		case "string":
			if len(prop.Enum) > 0 {
				b.AddStringEnum(name, prop.Description, prop.Enum, false)
			} else {
				b.AddString(name, prop.Description, false)
			}
		case "number":
			b.AddNumber(name, prop.Description, false)
		case "integer":
			b.AddInteger(name, prop.Description, false)
		case "boolean":
			b.AddBoolean(name, prop.Description, false)
		case "array":
			if prop.Items != nil && prop.Items.Type == "string" {
				b.AddStringArray(name, prop.Description, false)
			} else if prop.Items != nil && prop.Items.Type == "integer" {
				b.AddIntegerArray(name, prop.Description, false)
			}
		}
	}
	return b.AsMap()["properties"].(map[string]any)
}

// extractToolInput pulls the emit_result tool call's input map out of a
// Message response.
func extractToolInput(msg *anthropic.Message) any {
	for _, block := range msg.Content {
		if block.Type == "tool_use" {
			var input map[string]any
			if err := block.Input.UnmarshalInto(&input); err == nil {
				return input
			}
		}
	}
	return map[string]any{}
}

func extractText(msg *anthropic.Message) any {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
