package postrank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"researchengine/internal/llm"
	"researchengine/internal/schema"
)

// Summarize produces a short synopsis of the reranked source set for the
// Writer's methodology note, bounded to maxSources items and maxLength
// characters so a large result set never balloons the Writer's prompt.
func Summarize(ctx context.Context, client llm.Client, items []schema.SourceItem, maxSources, maxLength int) (string, error) {
	if maxSources <= 0 {
		maxSources = 5
	}
	if maxSources > len(items) {
		maxSources = len(items)
	}

	var b strings.Builder
	for i := 0; i < maxSources; i++ {
		fmt.Fprintf(&b, "%d. %s\n", i+1, items[i].Title)
	}

	prompt := "Summarize in one sentence what this source set collectively covers:\n" + b.String()
	raw, err := client.Ask(ctx, prompt, nil, llm.LevelLow, 10*time.Second, maxLength, nil)
	if err != nil {
		return "", err
	}
	s, _ := raw.(string)
	if len(s) > maxLength && maxLength > 0 {
		s = s[:maxLength]
	}
	return s, nil
}
