// Package model reads and writes entity model files: YAML documents that
// declare the entities of a store and their attribute schemas.
//
//	entities:
//	  - name: Counter
//	    identifier: identifier
//	    attributes:
//	      - {name: identifier, type: string}
//	      - {name: count, type: integer64}
//	      - {name: label, type: string, optional: true}
package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// ErrDuplicateEntity is returned when a model declares an entity twice.
var ErrDuplicateEntity = errors.New("duplicate entity")

type file struct {
	Entities []entity `yaml:"entities"`
}

type entity struct {
	Name       string      `yaml:"name"`
	Identifier string      `yaml:"identifier"`
	Attributes []attribute `yaml:"attributes"`
}

type attribute struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
}

// Load reads a model file from path.
func Load(path string) ([]types.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	entities, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// Parse decodes and validates a model document. Entities are returned in
// declaration order.
func Parse(data []byte) ([]types.Entity, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}

	out := make([]types.Entity, 0, len(f.Entities))
	seen := make(map[string]bool, len(f.Entities))
	for _, e := range f.Entities {
		te := types.Entity{Name: e.Name, Identifier: e.Identifier}
		for _, a := range e.Attributes {
			t, err := types.ParseAttributeType(a.Type)
			if err != nil {
				return nil, fmt.Errorf("entity %s attribute %s: %w", e.Name, a.Name, err)
			}
			te.Attributes = append(te.Attributes, types.Attribute{Name: a.Name, Type: t, Optional: a.Optional})
		}
		if err := te.Validate(); err != nil {
			return nil, err
		}
		if seen[te.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, te.Name)
		}
		seen[te.Name] = true
		out = append(out, te)
	}
	return out, nil
}

// Marshal encodes entities as a model document that Parse accepts.
func Marshal(entities []types.Entity) ([]byte, error) {
	f := file{Entities: make([]entity, 0, len(entities))}
	for _, e := range entities {
		fe := entity{Name: e.Name, Identifier: e.Identifier}
		for _, a := range e.Attributes {
			fe.Attributes = append(fe.Attributes, attribute{Name: a.Name, Type: a.Type.String(), Optional: a.Optional})
		}
		f.Entities = append(f.Entities, fe)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	return buf.Bytes(), nil
}
