package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/samber/lo"
)

// JSONSchema exports the list as a JSON Schema document for admin clients
// and external form generators. The engine-assigned id is read-only,
// sensitive fields are write-only.
func (l *List) JSONSchema() (*jsonschema.Schema, error) {
	properties := map[string]*jsonschema.Schema{
		"id": {Type: "string", ReadOnly: true, Description: "Engine assigned identifier."},
	}

	var required []string

	for _, f := range l.Fields {
		prop, err := fieldSchema(f)
		if err != nil {
			return nil, err
		}

		properties[f.Key] = prop

		if f.Required {
			required = append(required, f.Key)
		}
	}

	return &jsonschema.Schema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       l.Label,
		Description: l.Description,
		Type:        "object",
		Properties:  properties,
		Required:    required,
	}, nil
}

func fieldSchema(f Field) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{Title: f.Label}

	switch f.Type {
	case FieldTypeText, FieldTypePassword:
		s.Type = "string"

		if f.Pattern != "" {
			s.Pattern = f.Pattern
		}

		if f.MinLength > 0 {
			s.MinLength = lo.ToPtr(f.MinLength)
		}

		if f.MaxLength > 0 {
			s.MaxLength = lo.ToPtr(f.MaxLength)
		}

		if f.Sensitive() {
			s.WriteOnly = true
		}

	case FieldTypeCheckbox:
		s.Type = "boolean"

	case FieldTypeTimestamp:
		s.Type = "string"
		s.Format = "date-time"

	case FieldTypeInteger:
		s.Type = "integer"

	case FieldTypeFloat:
		s.Type = "number"

	default:
		return nil, fmt.Errorf("schema: field %q: no JSON Schema mapping for type %q", f.Key, string(f.Type))
	}

	if f.DefaultValue != nil {
		raw, err := json.Marshal(f.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("schema: field %q: marshal default: %w", f.Key, err)
		}

		s.Default = json.RawMessage(raw)
	}

	return s, nil
}
