package types

import "fmt"

// Entity declares a record kind: its name, the attribute that uniquely
// identifies a record, and the attribute schema.
type Entity struct {
	Name       string      // Entity kind name (required, non-empty).
	Identifier string      // Name of the identifying attribute.
	Attributes []Attribute // Declared attributes, in definition order.
}

// Attribute returns the attribute with the given name.
func (e Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Schema returns the attribute schema keyed by attribute name.
func (e Entity) Schema() map[string]Attribute {
	schema := make(map[string]Attribute, len(e.Attributes))
	for _, a := range e.Attributes {
		schema[a.Name] = a
	}
	return schema
}

// Validate checks that the entity is well-formed: a non-empty name, unique
// attribute names with defined types, and a non-optional identifier attribute.
func (e Entity) Validate() error {
	if e.Name == "" {
		return ErrInvalidName
	}
	seen := make(map[string]bool, len(e.Attributes))
	for _, a := range e.Attributes {
		if a.Name == "" {
			return fmt.Errorf("entity %s: %w", e.Name, ErrInvalidName)
		}
		if seen[a.Name] {
			return fmt.Errorf("entity %s: %w: %q", e.Name, ErrDuplicateAttribute, a.Name)
		}
		if a.Type == AttributeUndefined {
			return fmt.Errorf("entity %s attribute %s: %w", e.Name, a.Name, ErrInvalidAttributeType)
		}
		seen[a.Name] = true
	}
	id, ok := e.Attribute(e.Identifier)
	if !ok {
		return fmt.Errorf("entity %s: %w: identifier %q", e.Name, ErrAttributeNotFound, e.Identifier)
	}
	if id.Optional {
		return fmt.Errorf("entity %s: %w: identifier %q is optional", e.Name, ErrInvalidIdentifier, e.Identifier)
	}
	return nil
}
