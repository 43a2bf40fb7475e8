package skimmer

import (
	"encoding/json"
	"sort"
)

// FieldType is the declared type of a schema field. It is a closed
// enumeration; unknown type tags are rejected when the schema is parsed,
// not when extraction results are interpreted.
type FieldType string

// Valid field types.
const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// ParseFieldType validates a type tag and returns the corresponding FieldType.
func ParseFieldType(tag string) (FieldType, error) {
	switch ft := FieldType(tag); ft {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject:
		return ft, nil
	default:
		return "", Errorf(EINVALID, "invalid field type %q (must be one of: string, number, boolean, array, object)", tag)
	}
}

// Schema maps field names to their declared types. It tells the extraction
// capability which fields to look for on a page and constrains which keys
// may appear in a successful outcome's payload.
type Schema map[string]FieldType

// ParseSchema parses a JSON schema document of the form
// {"field": "type", ...} and validates every type tag.
func ParseSchema(data []byte) (Schema, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Errorf(EINVALID, "schema must be a JSON object mapping field names to types: %v", err)
	}

	schema := make(Schema, len(raw))
	for field, tag := range raw {
		ft, err := ParseFieldType(tag)
		if err != nil {
			return nil, Errorf(EINVALID, "field %q: %s", field, ErrorMessage(err))
		}
		schema[field] = ft
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// Validate returns an error if the schema is empty or contains an invalid
// type tag. Schemas built literally (not via ParseSchema) should be validated
// before use.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return Errorf(EINVALID, "schema must declare at least one field")
	}
	for field, ft := range s {
		if field == "" {
			return Errorf(EINVALID, "schema field names must be non-empty")
		}
		if _, err := ParseFieldType(string(ft)); err != nil {
			return Errorf(EINVALID, "field %q: %s", field, ErrorMessage(err))
		}
	}
	return nil
}

// Fields returns the schema's field names in sorted order.
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s))
	for field := range s {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Contains reports whether the schema declares the given field.
func (s Schema) Contains(field string) bool {
	_, ok := s[field]
	return ok
}
