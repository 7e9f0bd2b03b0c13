package llm

import (
	"github.com/taxsahaj/taxsahaj/internal/schema"
)

// BuildFieldJSONSchema renders a category's extraction schema as a JSON-Schema
// (draft 2020-12 subset) generic map, used to validate completion output.
// Extra keys are tolerated here; NormalizeFields strips them afterwards.
func BuildFieldJSONSchema(s schema.ExtractionSchema) map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Type {
		case schema.Currency:
			props[f.Name] = map[string]any{"type": "number"}
		case schema.Integer:
			props[f.Name] = map[string]any{"type": "integer"}
		case schema.YearStr:
			props[f.Name] = map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}$`}
		default:
			props[f.Name] = map[string]any{"type": "string"}
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
		"required":             s.RequiredNames(),
	}
}
