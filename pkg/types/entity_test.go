package types

import (
	"errors"
	"testing"
)

func TestEntityValidate(t *testing.T) {
	base := func() Entity {
		return Entity{
			Name:       "Counter",
			Identifier: "identifier",
			Attributes: []Attribute{
				{Name: "identifier", Type: AttributeString},
				{Name: "count", Type: AttributeInteger64},
				{Name: "label", Type: AttributeString, Optional: true},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *Entity)
		wantErr error
	}{
		{"valid entity", func(e *Entity) {}, nil},
		{"empty name", func(e *Entity) { e.Name = "" }, ErrInvalidName},
		{"empty attribute name", func(e *Entity) { e.Attributes[1].Name = "" }, ErrInvalidName},
		{"duplicate attribute", func(e *Entity) { e.Attributes[2].Name = "count" }, ErrDuplicateAttribute},
		{"undefined attribute type", func(e *Entity) { e.Attributes[1].Type = AttributeUndefined }, ErrInvalidAttributeType},
		{"missing identifier", func(e *Entity) { e.Identifier = "missing" }, ErrAttributeNotFound},
		{"optional identifier", func(e *Entity) { e.Attributes[0].Optional = true }, ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntitySchema(t *testing.T) {
	e := Entity{
		Name:       "Counter",
		Identifier: "identifier",
		Attributes: []Attribute{
			{Name: "identifier", Type: AttributeString},
			{Name: "count", Type: AttributeInteger64},
		},
	}
	schema := e.Schema()
	if len(schema) != 2 {
		t.Fatalf("Schema() len = %d, want 2", len(schema))
	}
	if schema["count"].Type != AttributeInteger64 {
		t.Errorf("schema[count].Type = %v, want integer64", schema["count"].Type)
	}
	if _, ok := e.Attribute("missing"); ok {
		t.Error("Attribute(missing) should report false")
	}
}
