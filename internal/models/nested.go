package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalNested decodes a field the recruitment API sends either as a JSON
// value or as a string containing JSON (sometimes wrapped in a markdown fence).
// It reports false when the field is absent.
func UnmarshalNested(data []byte, v interface{}) (bool, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return false, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return false, fmt.Errorf("failed to unquote nested payload: %w", err)
		}
		inner = extractJSON(inner)
		if inner == "" || inner == "null" {
			return false, nil
		}
		trimmed = inner
	}

	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return false, fmt.Errorf("failed to parse nested payload: %w", err)
	}
	return true, nil
}

func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Whichever structure opens first wins, so an array of objects stays an array.
	if startArr != -1 && endArr > startArr && (startObj == -1 || startArr < startObj) {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
