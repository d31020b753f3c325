package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

var personEntity = types.Entity{
	Name:       "Person",
	Identifier: "id",
	Attributes: []types.Attribute{
		{Name: "id", Type: types.AttributeUUID},
		{Name: "name", Type: types.AttributeString},
		{Name: "age", Type: types.AttributeInteger16, Optional: true},
		{Name: "score", Type: types.AttributeDouble, Optional: true},
		{Name: "balance", Type: types.AttributeDecimal, Optional: true},
		{Name: "born", Type: types.AttributeDate, Optional: true},
		{Name: "avatar", Type: types.AttributeBinary, Optional: true},
		{Name: "home", Type: types.AttributeURI, Optional: true},
		{Name: "street", Type: types.AttributeString, Optional: true},
		{Name: "zip", Type: types.AttributeString, Optional: true},
	},
}

const personID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

func store(t *testing.T) *sqlstore.Backend {
	t.Helper()
	b := sqlstore.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	require.NoError(t, b.DefineEntity(personEntity))
	return b
}

func readOne(t *testing.T, src string) map[string]any {
	t.Helper()
	docs, err := ReadJSON(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func value(t *testing.T, rec types.Record, name string) types.Value {
	t.Helper()
	v, err := rec.Value(name)
	require.NoError(t, err)
	return v
}

func TestDocument_EncodesDeclaredTypes(t *testing.T) {
	b := store(t)
	fields := readOne(t, `{
		"id": "`+personID+`",
		"name": "Ada",
		"age": 36,
		"score": 9.5,
		"balance": "1024.125",
		"born": "1815-12-10T00:00:00Z",
		"avatar": "AQID",
		"home": "https://example.com/ada"
	}`)

	doc, err := New(personEntity, fields)
	require.NoError(t, err)
	rec, err := pantry.Encode(b, doc)
	require.NoError(t, err)

	id, ok := value(t, rec, "id").UUID()
	require.True(t, ok)
	assert.Equal(t, uuid.MustParse(personID), id)
	assert.True(t, value(t, rec, "age").Equal(types.IntValue(36)))
	assert.True(t, value(t, rec, "score").Equal(types.FloatValue(9.5)))
	assert.Equal(t, "1024.125", value(t, rec, "balance").String())
	born, ok := value(t, rec, "born").Time()
	require.True(t, ok)
	assert.Equal(t, 1815, born.Year())
	avatar, _ := value(t, rec, "avatar").Bytes()
	assert.Equal(t, []byte{1, 2, 3}, avatar)
	assert.Equal(t, "https://example.com/ada", value(t, rec, "home").String())
}

func TestDocument_NestedObjectFlattens(t *testing.T) {
	b := store(t)
	fields := readOne(t, `{"id": "`+personID+`", "name": "Ada", "address": {"street": "Main", "zip": "94110"}}`)

	doc, err := New(personEntity, fields)
	require.NoError(t, err)
	rec, err := pantry.Encode(b, doc)
	require.NoError(t, err)
	assert.Equal(t, "Main", value(t, rec, "street").String())
	assert.Equal(t, "94110", value(t, rec, "zip").String())
}

func TestDocument_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		kind     error
		wantPath string
	}{
		{"unknown field", `{"id": "` + personID + `", "colour": "red"}`, pantry.ErrAttributeNotFound, "colour"},
		{"wrong type", `{"id": "` + personID + `", "age": "old"}`, pantry.ErrTypeMismatch, "age"},
		{"out of range", `{"id": "` + personID + `", "age": 70000}`, pantry.ErrTypeMismatch, "age"},
		{"bad uri type", `{"id": "` + personID + `", "home": 12}`, pantry.ErrTypeMismatch, "home"},
		{"required null", `{"id": "` + personID + `", "name": null}`, pantry.ErrValueNotFound, "name"},
		{"array", `{"id": "` + personID + `", "name": ["a"]}`, pantry.ErrTypeMismatch, "name[0]"},
		{"nested unknown", `{"id": "` + personID + `", "address": {"city": "x"}}`, pantry.ErrAttributeNotFound, "address.city"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := store(t)
			doc, err := New(personEntity, readOne(t, tt.src))
			require.NoError(t, err)

			_, err = pantry.Encode(b, doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var encErr *pantry.EncodingError
			require.True(t, errors.As(err, &encErr))
			assert.Equal(t, tt.wantPath, encErr.Path.String())
		})
	}
}

func TestNew_RequiresIdentifier(t *testing.T) {
	_, err := New(personEntity, map[string]any{"name": "Ada"})
	assert.ErrorIs(t, err, types.ErrValueRequired)

	_, err = New(personEntity, map[string]any{"id": "not-a-uuid"})
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestDocument_ReencodeSameKey(t *testing.T) {
	b := store(t)

	first, err := New(personEntity, readOne(t, `{"id": "`+personID+`", "name": "Ada"}`))
	require.NoError(t, err)
	second, err := New(personEntity, readOne(t, `{"id": "`+personID+`", "name": "Ada Lovelace"}`))
	require.NoError(t, err)

	records, err := pantry.EncodeAll(pantry.NewRecordEncoder(b), []*Document{first, second})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records[0].ID(), records[1].ID())
	assert.Equal(t, "Ada Lovelace", value(t, records[1], "name").String())
}

func TestReadJSON(t *testing.T) {
	docs, err := ReadJSON(strings.NewReader(`{"a": 1}
{"a": 2}
[{"a": 3}, {"a": 4}]`))
	require.NoError(t, err)
	assert.Len(t, docs, 4)

	_, err = ReadJSON(strings.NewReader(`[1, 2]`))
	assert.Error(t, err)
	_, err = ReadJSON(strings.NewReader(`{"a": `))
	assert.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	docs, err := ReadYAML(strings.NewReader(`id: ` + personID + `
name: Ada
age: 36
---
- id: x
- id: y
`))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Ada", docs[0]["name"])
	assert.Equal(t, 36, docs[0]["age"])
}

func TestDocument_FromYAML(t *testing.T) {
	b := store(t)
	docs, err := ReadYAML(strings.NewReader("id: " + personID + "\nname: Ada\nage: 36\nscore: 7\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc, err := New(personEntity, docs[0])
	require.NoError(t, err)
	rec, err := pantry.Encode(b, doc)
	require.NoError(t, err)
	assert.True(t, value(t, rec, "age").Equal(types.IntValue(36)))
	assert.True(t, value(t, rec, "score").Equal(types.FloatValue(7)))
}
