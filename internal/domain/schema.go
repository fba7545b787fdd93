package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrSchemaMismatch is returned when a model response does not match its
// declared output shape.
var ErrSchemaMismatch = errors.New("response does not match schema")

type SchemaType string

const (
	SchemaObject  SchemaType = "object"
	SchemaArray   SchemaType = "array"
	SchemaString  SchemaType = "string"
	SchemaNumber  SchemaType = "number"
	SchemaInteger SchemaType = "integer"
	SchemaBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of a JSON response shape. It is
// sent to providers that support constrained decoding and used locally to
// validate every response before it is decoded into a Go type.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

func StringSchema(desc string, enum ...string) *Schema {
	return &Schema{Type: SchemaString, Description: desc, Enum: enum}
}

func NumberSchema(desc string, min, max float64) *Schema {
	return &Schema{Type: SchemaNumber, Description: desc, Minimum: &min, Maximum: &max}
}

func ArraySchema(desc string, items *Schema) *Schema {
	return &Schema{Type: SchemaArray, Description: desc, Items: items}
}

func ObjectSchema(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: SchemaObject, Properties: props, Required: required}
}

// PropertyOrder lists required properties first, then the rest sorted.
func (s *Schema) PropertyOrder() []string {
	seen := make(map[string]bool, len(s.Properties))
	order := make([]string, 0, len(s.Properties))
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// Validate parses raw as a single JSON value and checks it against s.
// Object members holding null are treated as absent.
func (s *Schema) Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaMismatch, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", ErrSchemaMismatch)
	}

	compiled, err := s.compile()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := compiled.Validate(dropNulls(v)); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

var compiledSchemas sync.Map // canonical schema JSON -> *jsonschema.Schema

func (s *Schema) compile() (*jsonschema.Schema, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	key := string(doc)
	if cached, ok := compiledSchemas.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiledSchemas.Store(key, compiled)
	return compiled, nil
}

const schemaURL = "response.json"

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(val)
		}
	case []any:
		for i, item := range t {
			t[i] = dropNulls(item)
		}
	}
	return v
}
