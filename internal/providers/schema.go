package providers

import "strings"

// CleanToolSchemas translates tool definitions to the OpenAI-compatible
// wire shape, cleaning each parameter schema for vendor-specific quirks.
func CleanToolSchemas(vendor string, tools []ToolDefinition) []map[string]interface{} {
	out := make([]map[string]interface{}, len(tools))
	for i, t := range tools {
		out[i] = map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        t.Function.Name,
				"description": t.Function.Description,
				"parameters":  CleanSchemaForProvider(vendor, t.Function.Parameters),
			},
		}
	}
	return out
}

// CleanSchemaForProvider strips JSON-schema constructs that a given
// vendor's tool-calling implementation rejects or ignores, recursing
// into nested object/array schemas.
//
// Gemini rejects "format" on string properties outside a small allow
// list, and rejects "additionalProperties"/"$schema" entirely.
// DashScope/Qwen is OpenAI-compatible but chokes on "exclusiveMinimum"/
// "exclusiveMaximum" (draft-2020-12 boolean form it doesn't support).
func CleanSchemaForProvider(vendor string, schema map[string]interface{}) map[string]interface{} {
	if schema == nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	return cleanSchemaValue(strings.ToLower(vendor), schema).(map[string]interface{})
}

var geminiAllowedStringFormats = map[string]bool{
	"enum": true,
	"date-time": true,
}

func cleanSchemaValue(vendor string, v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(node))
		for k, val := range node {
			switch {
			case strings.Contains(vendor, "gemini") && k == "additionalProperties":
				continue
			case strings.Contains(vendor, "gemini") && k == "$schema":
				continue
			case strings.Contains(vendor, "gemini") && k == "format":
				if s, ok := val.(string); ok && !geminiAllowedStringFormats[s] {
					continue
				}
			case strings.Contains(vendor, "dashscope") && (k == "exclusiveMinimum" || k == "exclusiveMaximum"):
				if _, isBool := val.(bool); isBool {
					continue
				}
			}
			out[k] = cleanSchemaValue(vendor, val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, item := range node {
			out[i] = cleanSchemaValue(vendor, item)
		}
		return out
	default:
		return v
	}
}
