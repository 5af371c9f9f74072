package llm

import (
	"encoding/json"
	"strings"
)

// Repair attempts to turn a language model's raw text response into valid
// JSON, in four bounded steps, stopping at the first one that produces a
// value encoding/json can unmarshal. Each step is strictly more
// destructive than the last; none of them re-queries the model.
func Repair(raw string) (map[string]any, bool) {
	if m, ok := tryUnmarshal(raw); ok {
		return m, true
	}

	extracted := extractJSONObject(raw)
	if m, ok := tryUnmarshal(extracted); ok {
		return m, true
	}

	closed := closeDangling(extracted)
	if m, ok := tryUnmarshal(closed); ok {
		return m, true
	}

	if m, ok := truncateToLastComma(extracted); ok {
		return m, true
	}

	if m, ok := salvageFirstPair(extracted); ok {
		return m, true
	}

	return nil, false
}

func tryUnmarshal(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, false
	}
	return m, true
}

// extractJSONObject pulls the substring between the first '{' and the
// matching/last '}' out of mixed content (e.g. "Here is the result:
// {...}\nLet me know if...").
func extractJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}

// closeDangling appends closing quotes/brackets/braces for any left open
// when the model's output was truncated mid-token.
func closeDangling(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// truncateToLastComma drops everything from the last comma onward (at any
// nesting depth), closes the result, and retries, moving back one comma at
// a time until a candidate parses — recovering a partial object/array when
// closeDangling alone still leaves a dangling, unparsable tail value.
func truncateToLastComma(s string) (map[string]any, bool) {
	last := strings.LastIndexByte(s, ',')
	for last != -1 {
		candidate := closeDangling(s[:last])
		if m, ok := tryUnmarshal(candidate); ok {
			return m, true
		}
		last = strings.LastIndexByte(s[:last], ',')
	}
	return nil, false
}

// salvageFirstPair is the last resort: pull out the first `"key": value`
// pair found anywhere in the text and wrap it as a single-field object, so
// the caller gets at least a partial, schema-shaped result instead of a
// hard failure.
func salvageFirstPair(s string) (map[string]any, bool) {
	keyStart := strings.IndexByte(s, '"')
	if keyStart == -1 {
		return nil, false
	}
	keyEnd := strings.IndexByte(s[keyStart+1:], '"')
	if keyEnd == -1 {
		return nil, false
	}
	keyEnd += keyStart + 1
	key := s[keyStart+1 : keyEnd]

	colon := strings.IndexByte(s[keyEnd+1:], ':')
	if colon == -1 {
		return nil, false
	}
	colon += keyEnd + 1

	rest := strings.TrimSpace(s[colon+1:])
	if rest == "" {
		return nil, false
	}

	attempts := []string{
		rest,
		extractJSONObject(rest),
	}
	if end := strings.IndexAny(rest, ",}\n"); end != -1 {
		attempts = append(attempts, rest[:end])
	}

	for _, candidate := range attempts {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return map[string]any{key: v}, true
		}
	}
	return nil, false
}
