package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

const counterModel = `entities:
  - name: Counter
    identifier: identifier
    attributes:
      - {name: identifier, type: string}
      - {name: count, type: integer64}
      - {name: label, type: string, optional: true}
  - name: Tag
    identifier: id
    attributes:
      - name: id
        type: uuid
`

func TestParse(t *testing.T) {
	entities, err := Parse([]byte(counterModel))
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, types.Entity{
		Name:       "Counter",
		Identifier: "identifier",
		Attributes: []types.Attribute{
			{Name: "identifier", Type: types.AttributeString},
			{Name: "count", Type: types.AttributeInteger64},
			{Name: "label", Type: types.AttributeString, Optional: true},
		},
	}, entities[0])
	assert.Equal(t, "Tag", entities[1].Name)
	assert.Equal(t, types.AttributeUUID, entities[1].Attributes[0].Type)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown type",
			doc:  "entities:\n  - name: A\n    identifier: id\n    attributes:\n      - {name: id, type: money}\n",
			want: types.ErrInvalidAttributeType,
		},
		{
			name: "missing identifier attribute",
			doc:  "entities:\n  - name: A\n    identifier: id\n    attributes:\n      - {name: other, type: string}\n",
			want: types.ErrAttributeNotFound,
		},
		{
			name: "optional identifier",
			doc:  "entities:\n  - name: A\n    identifier: id\n    attributes:\n      - {name: id, type: string, optional: true}\n",
			want: types.ErrInvalidIdentifier,
		},
		{
			name: "duplicate entity",
			doc:  "entities:\n  - name: A\n    identifier: id\n    attributes: [{name: id, type: string}]\n  - name: A\n    identifier: id\n    attributes: [{name: id, type: string}]\n",
			want: ErrDuplicateEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("entities:\n  - name: A\n    identifer: id\n"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	entities, err := Parse([]byte(counterModel))
	require.NoError(t, err)

	data, err := Marshal(entities)
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, entities, again)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(counterModel), 0o644))

	entities, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, entities, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
