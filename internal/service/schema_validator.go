package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// schemaField is the subset of the form builder's field definition the
// pipeline cares about. Anything else in the schema document is ignored.
type schemaField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Options  []any  `json:"options"`
}

// formSchema is the top-level schema document shape.
type formSchema struct {
	Fields []schemaField `json:"fields"`
}

// FormSchemaValidator implements ports.SchemaValidator against the form
// builder's field list.
type FormSchemaValidator struct{}

// NewFormSchemaValidator creates a new schema validator.
func NewFormSchemaValidator() *FormSchemaValidator {
	return &FormSchemaValidator{}
}

// Validate checks data against the form schema. A schema with no fields
// list accepts any document. The first violation found is returned.
func (v *FormSchemaValidator) Validate(schema json.RawMessage, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var parsed formSchema
	if err := json.Unmarshal(schema, &parsed); err != nil {
		// A malformed stored schema must not block submissions.
		return nil
	}

	for _, field := range parsed.Fields {
		key := field.key()
		if key == "" {
			continue
		}

		value, present := data[key]
		if !present || isEmptyValue(value) {
			if field.Required {
				return fmt.Errorf("field '%s' is required", key)
			}
			continue
		}

		if err := checkFieldType(field, key, value); err != nil {
			return err
		}
	}

	return nil
}

// key resolves the submission document key for a field: name takes
// precedence, then id, then label.
func (f *schemaField) key() string {
	if f.Name != "" {
		return f.Name
	}
	if f.ID != "" {
		return f.ID
	}
	return f.Label
}

// isEmptyValue reports whether a present value counts as missing for a
// required check.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// checkFieldType validates a present value against the field's declared type.
func checkFieldType(field schemaField, key string, value any) error {
	switch field.Type {
	case "email":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a string", key)
		}
		if !strings.Contains(s, "@") {
			return fmt.Errorf("field '%s' must be a valid email", key)
		}
	case "number":
		switch value.(type) {
		case float64, int, int64, json.Number:
		default:
			return fmt.Errorf("field '%s' must be a number", key)
		}
	case "checkbox":
		switch value.(type) {
		case bool, []any:
		default:
			return fmt.Errorf("field '%s' must be a boolean or a list", key)
		}
	case "select", "radio":
		if len(field.Options) == 0 {
			return nil
		}
		if !optionAllowed(field.Options, value) {
			return fmt.Errorf("field '%s' has an invalid option", key)
		}
	case "text", "textarea":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field '%s' must be a string", key)
		}
	}
	return nil
}

// optionAllowed checks value membership in the declared options. Options may
// be plain strings or objects with a "value" (or "label") key.
func optionAllowed(options []any, value any) bool {
	chosen, ok := value.(string)
	if !ok {
		return false
	}
	for _, opt := range options {
		switch o := opt.(type) {
		case string:
			if o == chosen {
				return true
			}
		case map[string]any:
			if v, ok := o["value"].(string); ok && v == chosen {
				return true
			}
			if l, ok := o["label"].(string); ok && l == chosen {
				return true
			}
		}
	}
	return false
}
