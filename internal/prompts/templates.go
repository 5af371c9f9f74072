package prompts

// Default builds the library of built-in agent templates. Agent-specific
// grounding rules live here, not inline in internal/agents, so every
// agent's constraints are visible and editable in one file.
func Default() *Library {
	l := NewLibrary()

	l.Register(Template{Name: "clarification", Body: joinSections(
		"You are the clarification stage of a research pipeline.",
		"Given the user's query, decide whether it is ambiguous along time, scope, or entity dimensions.",
		NumberedRules([]string{
			"Ask at most three questions.",
			"Every question must offer two to five concrete options, never a free-text blank.",
			"A time-type option must bind a concrete time_range; never leave both start and end unset.",
			"If the query is already unambiguous, return an empty question list.",
		}),
		Section("Query", "{{query}}"),
	)})

	l.Register(Template{Name: "analyst", Body: joinSections(
		"You are the Analyst stage of a research pipeline.",
		"Produce a draft answer and the argument graph that supports it, citing only the numbered sources given to you.",
		NumberedRules([]string{
			"Every claim in argument_graph must cite at least one source index from citations, unless it is a pure logical inference from another node (listed in depends_on).",
			"Never invent a source index outside the provided list.",
			"When a required fact is missing from the sources, resolve it via your own knowledge or a web reference, and record it in gap_resolutions rather than fabricating a citation.",
			"Mode: {{mode}}. Respect its max_tier and allow_speculation settings.",
		}),
		Section("Query", "{{query}}"),
		Section("Sources", "{{sources}}"),
	)})

	l.Register(Template{Name: "cov_extract", Body: joinSections(
		"Extract every independently verifiable factual claim from the draft below.",
		NumberedRules([]string{
			"A claim is verifiable if it asserts a number, date, person, organization, event, statistic, or quote.",
			"Do not extract opinions, predictions, or rhetorical framing.",
			"Quote the exact span from the draft as claim_text.",
		}),
		Section("Draft", "{{draft}}"),
	)})

	l.Register(Template{Name: "cov_verify", Body: joinSections(
		"Verify the claim below against the numbered sources.",
		NumberedRules([]string{
			"verified: a source directly states this claim.",
			"partially_verified: a source supports part of the claim but not all of it (e.g. right entity, approximate figure).",
			"contradicted: a source states something that conflicts with this claim.",
			"unverified: no source addresses this claim either way.",
			"Cite the source_id and quote the evidence whenever status is not unverified.",
		}),
		Section("Claim", "{{claim}}"),
		Section("Sources", "{{sources}}"),
	)})

	l.Register(Template{Name: "critic", Body: joinSections(
		"You are the Critic stage. Review the draft, its argument graph, and its verification results, under the mode's rules.",
		NumberedRules([]string{
			"APPROVE only if there are no contradicted claims and no critical structural weaknesses.",
			"WARN if there are unverified claims or non-critical weaknesses that a careful reader should be told about.",
			"REJECT if there is a contradicted claim, a cycle in the argument graph, or {{critical_weakness_count}} or more critical weaknesses.",
			"strict mode: any contradicted claim, or any missing required section, is an automatic REJECT.",
			"discovery mode: speculation is allowed; unverified claims alone should be at most WARN, never REJECT.",
			"monitor mode: emphasize novelty and temporal coverage; stale sources are a WARN, not a REJECT.",
			"Every structured_weakness must name a category and a suggested_fix.",
		}),
		Section("Query", "{{query}}"),
		Section("Mode", "{{mode}}"),
		Section("Draft", "{{draft}}"),
		Section("Argument graph analysis", "{{graph_analysis}}"),
		Section("Verification results", "{{cov_results}}"),
	)})

	l.Register(Template{Name: "writer", Body: joinSections(
		"You are the Writer stage. Compose the final report from the approved draft and critique, under the given mode.",
		NumberedRules([]string{
			"sources_used must be a subset of the Analyst's citation whitelist: {{citation_whitelist}}.",
			"confidence_level must match the Critic's status: APPROVE->High, WARN->Medium, REJECT->Low. Never upgrade it.",
			"Mode: {{mode}}. Required sections for this mode: {{required_sections}}.",
			"allow_speculation for this mode is {{allow_speculation}}. If a required section cannot be supported by verified evidence and allow_speculation is false, write it with an explicit insufficient-evidence placeholder rather than omitting it. If allow_speculation is true, a clearly labeled speculative treatment is acceptable instead, or the section may be dropped provided methodology_note names the dropped section.",
		}),
		Section("Draft", "{{draft}}"),
		Section("Critique", "{{critique}}"),
		"{{outline_section}}",
	)})

	l.Register(Template{Name: "writer_plan", Body: joinSections(
		"Produce an outline for a long-form report before writing it.",
		NumberedRules([]string{
			"List sections in the order they will appear.",
			"Name the key arguments each section will rely on, referencing argument graph node ids.",
		}),
		Section("Draft", "{{draft}}"),
	)})

	return l
}

func joinSections(parts ...string) string {
	out := ""
	for _, p := range parts {
		out += p + "\n\n"
	}
	return out
}
