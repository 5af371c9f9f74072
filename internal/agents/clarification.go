package agents

import (
	"context"

	"researchengine/internal/obslog"
	"researchengine/internal/schema"
)

// Clarification asks whether a query is ambiguous along time, scope, or
// entity dimensions, returning at most three bounded-option questions.
type Clarification struct {
	*BaseAgent
}

func NewClarification(base *BaseAgent) *Clarification {
	base.Name = "clarification"
	return &Clarification{BaseAgent: base}
}

func questionSchema() schema.JSONSchema {
	optionItem := schema.NewBuilder("a single answer option").
		AddString("label", "human-readable option text", true).
		NoAdditionalProperties().
		Build()

	questionItem := schema.NewBuilder("a single clarification question").
		AddStringEnum("clarification_type", "dimension being clarified", []string{"time", "scope", "entity"}, true).
		AddString("question", "the question text", true).
		AddBoolean("required", "whether the pipeline should block without an answer", true).
		AddArray("options", "two to five answer options", optionItem, true).
		NoAdditionalProperties().
		Build()

	return schema.NewBuilder("clarification questions for an ambiguous query").
		AddArray("questions", "at most three questions", questionItem, true).
		NoAdditionalProperties().
		Build()
}

// Run returns the clarification questions for query, which may be empty
// when the query is already unambiguous.
func (c *Clarification) Run(ctx context.Context, logger obslog.QueryLogger, query string) ([]schema.Question, error) {
	result, err := c.Call(ctx, logger, "clarification", map[string]string{"query": query}, questionSchema(), lowLevel())
	if err != nil {
		return nil, err
	}

	raw, _ := result["questions"].([]any)
	questions := make([]schema.Question, 0, len(raw))
	for _, item := range raw {
		qm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q := schema.Question{
			ClarificationType: schema.ClarificationType(asString(qm["clarification_type"])),
			Question:          asString(qm["question"]),
			Required:          asBool(qm["required"]),
		}
		if optsRaw, ok := qm["options"].([]any); ok {
			for _, o := range optsRaw {
				om, ok := o.(map[string]any)
				if !ok {
					continue
				}
				q.Options = append(q.Options, schema.ClarificationOption{Label: asString(om["label"])})
			}
		}
		if len(q.Options) >= 2 {
			questions = append(questions, q)
		}
	}
	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions, nil
}
