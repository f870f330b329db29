package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeToolCallBlock turns a backend tool call into a tool-use block with the
// JSON arguments decoded. A payload that does not decode becomes a text block
// carrying the raw payload and an error note, never a failure.
func decodeToolCallBlock(id, name, rawArgs string) ContentBlock {
	raw := strings.TrimSpace(rawArgs)
	if raw == "" {
		raw = "{}"
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return TextBlock(fmt.Sprintf("tool call %q carried undecodable arguments (%v): %s", name, err, rawArgs))
	}

	return ToolUseBlock(ToolUse{ID: id, Name: name, Input: input, Raw: raw})
}

// schemaProperties extracts the properties object from a JSON-schema map.
func schemaProperties(schema map[string]any) map[string]any {
	if props, ok := schema["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}

// schemaRequired extracts the required field names from a JSON-schema map.
func schemaRequired(schema map[string]any) []string {
	if req, ok := schema["required"].([]string); ok {
		return req
	}
	raw, ok := schema["required"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
