package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPrompt_PrefersSiteSpecific(t *testing.T) {
	l := NewLibrary()
	l.Register(Template{Name: "analyst", Site: "", Body: "generic"})
	l.Register(Template{Name: "analyst", Site: "arxiv.org", Body: "arxiv-specific"})

	tmpl, err := l.FindPrompt("analyst", "arxiv.org")
	require.NoError(t, err)
	assert.Equal(t, "arxiv-specific", tmpl.Body)

	tmpl, err = l.FindPrompt("analyst", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "generic", tmpl.Body)
}

func TestFindPrompt_UnknownNameErrors(t *testing.T) {
	l := NewLibrary()
	_, err := l.FindPrompt("nonexistent", "")
	assert.Error(t, err)
}

func TestFillPrompt_SubstitutesVars(t *testing.T) {
	out := FillPrompt("Query: {{query}} Mode: {{mode}}", map[string]string{
		"query": "who won", "mode": "strict",
	})
	assert.Equal(t, "Query: who won Mode: strict", out)
}

func TestDefault_RegistersAllAgentTemplates(t *testing.T) {
	l := Default()
	for _, name := range []string{"clarification", "analyst", "cov_extract", "cov_verify", "critic", "writer", "writer_plan"} {
		_, err := l.FindPrompt(name, "")
		require.NoError(t, err, name)
	}
}
