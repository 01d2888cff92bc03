package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a JSON Schema that model output extracted from free text is
// checked against. It compiles on first use.
type Schema struct {
	// Name identifies the schema in errors, kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Validate checks raw against the schema. Any failure, including raw not
// being JSON, is an *ErrInvalidResponse.
func (s *Schema) Validate(raw json.RawMessage) error {
	s.once.Do(s.compile)
	if s.err != nil {
		return &ErrInvalidResponse{Text: string(raw), Err: s.err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Text: string(raw), Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Text: string(raw), Err: fmt.Errorf("schema %s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() {
	// The compiler wants a decoded JSON value; round-trip the Go map to get one.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		s.err = fmt.Errorf("marshal schema %s: %w", s.Name, err)
		return
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		s.err = fmt.Errorf("parse schema %s: %w", s.Name, err)
		return
	}

	c := jsonschema.NewCompiler()
	url := "schema://" + s.Name + ".json"
	if err := c.AddResource(url, def); err != nil {
		s.err = fmt.Errorf("add schema %s: %w", s.Name, err)
		return
	}
	if s.compiled, err = c.Compile(url); err != nil {
		s.err = fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
}
