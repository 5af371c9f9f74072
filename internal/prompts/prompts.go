// Package prompts assembles the LLM prompts every agent sends through
// ask_llm. No agent builds a prompt string inline; each resolves a named
// template via FindPrompt and fills it via FillPrompt, so prompt wording
// changes in one place per agent.
package prompts

import (
	"fmt"
	"sort"
	"strings"
)

// Template is one named, site-specialized prompt skeleton.
type Template struct {
	Name string
	Site string // "" matches any site
	Body string
}

// Library resolves named templates, preferring a site-specific variant
// over the generic one when both are registered.
type Library struct {
	templates map[string][]Template
}

// NewLibrary builds an empty library. Call Register to populate it, or
// Default to get the pipeline's built-in agent templates.
func NewLibrary() *Library {
	return &Library{templates: make(map[string][]Template)}
}

// Register adds a template under its name, making it resolvable by
// FindPrompt(name, site).
func (l *Library) Register(t Template) {
	l.templates[t.Name] = append(l.templates[t.Name], t)
}

// FindPrompt returns the most specific registered template for name/site:
// an exact site match if present, else the site-agnostic ("") template,
// else an error.
func (l *Library) FindPrompt(name, site string) (Template, error) {
	candidates, ok := l.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("no prompt template registered for %q", name)
	}
	var fallback *Template
	for i := range candidates {
		if candidates[i].Site == site {
			return candidates[i], nil
		}
		if candidates[i].Site == "" {
			fallback = &candidates[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return Template{}, fmt.Errorf("no prompt template registered for %q applicable to site %q", name, site)
}

// FillPrompt substitutes {{var}} placeholders in template with the given
// values, one key at a time in sorted key order (so a value that itself
// contains a later key's placeholder is substituted too). Missing vars are
// left as-is so a
// caller bug surfaces as an obviously malformed prompt rather than being
// silently swallowed.
func FillPrompt(template string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := template
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", vars[k])
	}
	return out
}

// Section renders a titled block the way agent prompts compose their
// numbered sections: a header line, a blank line, the body, then a
// trailing blank line.
func Section(title, body string) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	return b.String()
}

// NumberedRules renders a numbered list of grounding rules, the way every
// agent prompt in this pipeline states its non-negotiable constraints
// before any task-specific content.
func NumberedRules(rules []string) string {
	var b strings.Builder
	for i, r := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	return b.String()
}
