package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals the JSON payload found in a model answer.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON pulls a JSON document out of an answer that may wrap it in a
// markdown fence or surround it with prose.
func extractJSON(s string) string {
	if block, ok := fencedBlock(s, "```json"); ok {
		return block
	}
	if block, ok := fencedBlock(s, "```"); ok {
		return block
	}
	if raw, ok := balancedJSON(s); ok {
		return raw
	}
	return s
}

func fencedBlock(s, fence string) (string, bool) {
	idx := strings.Index(s, fence)
	if idx == -1 {
		return "", false
	}
	body := strings.TrimLeft(s[idx+len(fence):], "\r\n")
	end := strings.Index(body, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimRight(body[:end], "\r\n"), true
}

// balancedJSON returns the first bracket-balanced object or array in s.
func balancedJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
