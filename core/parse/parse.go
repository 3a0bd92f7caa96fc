// Package parse converts model-generated text into typed values. Generation
// backends return prose with JSON embedded in it, often slightly malformed;
// ParseAs strips Markdown fences, attempts a strict unmarshal, and falls
// back to jsonrepair before giving up.
package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseAs parses model output into T. The content may be wrapped in a
// ```json fence and may contain the usual LLM JSON defects (single quotes,
// trailing commas, unquoted keys); those are repaired before the second
// unmarshal attempt.
//
// Example:
//
//	report, err := parse.ParseAs[AnalysisReport](modelOutput)
func ParseAs[T any](content string) (T, error) {
	var parsed T

	stripped := StripFences(content)

	if err := json.Unmarshal([]byte(stripped), &parsed); err == nil {
		return parsed, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(stripped)
	if repairErr != nil {
		return parsed, fmt.Errorf("content is not valid JSON and could not be repaired: %w", repairErr)
	}

	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return parsed, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", parsed, err)
	}

	return parsed, nil
}

// StripFences removes a surrounding Markdown code fence (``` or ```json)
// from content, if present, and trims whitespace. Content without a fence
// is returned trimmed and otherwise unchanged.
func StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
		firstLine := strings.TrimSpace(trimmed[:newline])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{[") {
			trimmed = trimmed[newline+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
