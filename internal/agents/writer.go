package agents

import (
	"context"
	"strconv"
	"strings"

	"researchengine/internal/errs"
	"researchengine/internal/obslog"
	"researchengine/internal/prompts"
	"researchengine/internal/schema"
)

// Writer composes the final report from the approved draft and critique,
// either directly or, for long-form output, via an outline-first
// plan-and-write path. It never emits a citation outside the Analyst's
// whitelist, and never reports a confidence level above what the
// Critic's status licenses.
type Writer struct {
	*BaseAgent
}

func NewWriter(base *BaseAgent) *Writer {
	base.Name = "writer"
	return &Writer{BaseAgent: base}
}

func writerSchema() schema.JSONSchema {
	return schema.NewBuilder("writer final report").
		AddString("final_report", "the final report text", true).
		AddIntegerArray("sources_used", "subset of the citation whitelist actually used", true).
		AddStringEnum("confidence_level", "must not exceed the level the critic status licenses", []string{"High", "Medium", "Low"}, true).
		AddString("methodology_note", "notes on method, gaps, or speculation", false).
		NoAdditionalProperties().
		Build()
}

func planSchema() schema.JSONSchema {
	return schema.NewBuilder("writer outline for long-form output").
		AddStringArray("outline", "section titles in order", true).
		AddInteger("estimated_length", "approximate word count", false).
		AddStringArray("key_arguments", "argument graph node_ids each section relies on", false).
		NoAdditionalProperties().
		Build()
}

// Options configures a single Writer.Run call.
type Options struct {
	Mode             schema.Mode
	RequiredSections []string
	AllowSpeculation bool
	PlanAndWrite     bool
	CitationWhitelist []int
}

// Run composes the final report. If opts.PlanAndWrite is set, it first
// requests an outline and threads it into the composition prompt as
// additional context; otherwise it composes directly.
func (w *Writer) Run(ctx context.Context, logger obslog.QueryLogger, draft string, review *schema.CriticReview, opts Options) (*schema.WriterOutput, error) {
	vars := map[string]string{
		"draft":              draft,
		"critique":           review.Critique,
		"citation_whitelist": joinInts(opts.CitationWhitelist),
		"mode":               string(opts.Mode),
		"required_sections":  strings.Join(opts.RequiredSections, ", "),
		"allow_speculation":  strconv.FormatBool(opts.AllowSpeculation),
		"outline_section":    "",
	}

	if opts.PlanAndWrite {
		plan, err := w.plan(ctx, logger, draft)
		if err != nil {
			return nil, err
		}
		vars["outline_section"] = prompts.Section("Outline", strings.Join(plan.Outline, "\n")) +
			prompts.Section("Key arguments per section (by node_id)", strings.Join(plan.KeyArguments, ", "))
	}

	result, err := w.Call(ctx, logger, "writer", vars, writerSchema(), highLevel())
	if err != nil {
		return nil, err
	}

	out := &schema.WriterOutput{
		FinalReport:     asString(result["final_report"]),
		SourcesUsed:     asIntSlice(result["sources_used"]),
		MethodologyNote: asString(result["methodology_note"]),
	}

	if notInWhitelist := setDiff(out.SourcesUsed, opts.CitationWhitelist); len(notInWhitelist) > 0 {
		return nil, &errs.WhitelistViolation{InvalidIDs: notInWhitelist}
	}

	// confidence_level is derived from the Critic's status and may never be
	// upgraded past it, even if the model's own output claims otherwise.
	out.ConfidenceLevel = schema.ConfidenceForStatus(review.Status)

	if logger != nil {
		logger.FinalConfidence(out.ConfidenceLevel)
	}

	return out, nil
}

func (w *Writer) plan(ctx context.Context, logger obslog.QueryLogger, draft string) (*schema.WriterPlan, error) {
	result, err := w.Call(ctx, logger, "writer_plan", map[string]string{"draft": draft}, planSchema(), lowLevel())
	if err != nil {
		return nil, err
	}
	plan := &schema.WriterPlan{
		Outline:      asStringSlice(result["outline"]),
		KeyArguments: asStringSlice(result["key_arguments"]),
	}
	if n, ok := asFloat(result["estimated_length"]); ok {
		plan.EstimatedLength = int(n)
	}
	return plan, nil
}

func joinInts(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// setDiff returns the elements of used not present in whitelist.
func setDiff(used, whitelist []int) []int {
	allowed := make(map[int]bool, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = true
	}
	var diff []int
	for _, id := range used {
		if !allowed[id] {
			diff = append(diff, id)
		}
	}
	return diff
}
