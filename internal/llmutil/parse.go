// Package llmutil contains helpers for handling model responses.
package llmutil

import (
	"fmt"
	"strings"
)

// ExtractJSON pulls a JSON object out of a model response that may wrap it
// in markdown code fences or surround it with prose. It prefers the content
// of a ```json fence; otherwise it falls back to the span between the first
// '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	content := strings.TrimSpace(text)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end]), nil
		}
		content = strings.TrimSpace(rest)
	} else {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return content[start : end+1], nil
}
