package extract

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fieldSchema constrains extracted field maps: values are scalars, lists
// of scalars, one-level records, or lists of flat records. Nothing deeper
// (and nothing cyclic) gets past this into the cache.
const fieldSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{"type": ["string", "number", "boolean", "null"]},
			{
				"type": "array",
				"items": {"type": ["string", "number", "boolean"]}
			},
			{
				"type": "object",
				"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
			},
			{
				"type": "array",
				"items": {
					"type": "object",
					"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
				}
			}
		]
	}
}`

var compiledFieldSchema = jsonschema.MustCompileString("fields.json", fieldSchema)

// ValidateFields checks an extracted field map against the field schema.
func ValidateFields(fields map[string]any) error {
	// Round-trip through JSON so validation sees the same value shapes the
	// store will hold.
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := compiledFieldSchema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
