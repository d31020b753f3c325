package pantry

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// memRecord and memStore are a minimal in-memory record store for encoder tests.
type memRecord struct {
	id     string
	entity types.Entity
	values map[string]types.Value
}

func (r *memRecord) ID() string         { return r.id }
func (r *memRecord) EntityName() string { return r.entity.Name }

func (r *memRecord) Attribute(name string) (types.Attribute, bool) {
	return r.entity.Attribute(name)
}

func (r *memRecord) Schema() map[string]types.Attribute { return r.entity.Schema() }

func (r *memRecord) Value(name string) (types.Value, error) {
	if _, ok := r.entity.Attribute(name); !ok {
		return types.Value{}, types.ErrAttributeNotFound
	}
	return r.values[name], nil
}

func (r *memRecord) SetValue(name string, v types.Value) error {
	attr, ok := r.entity.Attribute(name)
	if !ok {
		return types.ErrAttributeNotFound
	}
	coerced, err := attr.Coerce(v)
	if err != nil {
		return err
	}
	r.values[name] = coerced
	return nil
}

type memStore struct {
	entities  map[string]types.Entity
	records   []*memRecord
	saves     int
	insertErr error
}

func newMemStore(entities ...types.Entity) *memStore {
	s := &memStore{entities: make(map[string]types.Entity)}
	for _, e := range entities {
		s.entities[e.Name] = e
	}
	return s
}

func (s *memStore) FetchOne(entity, attribute string, key types.Value) (types.Record, error) {
	e, ok := s.entities[entity]
	if !ok {
		return nil, types.ErrEntityNotFound
	}
	attr, ok := e.Attribute(attribute)
	if !ok {
		return nil, types.ErrAttributeNotFound
	}
	key, err := attr.Coerce(key)
	if err != nil {
		return nil, err
	}
	for _, r := range s.records {
		if r.entity.Name == entity && r.values[attribute].Equal(key) {
			return r, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *memStore) Insert(entity string) (types.Record, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	e, ok := s.entities[entity]
	if !ok {
		return nil, types.ErrEntityNotFound
	}
	r := &memRecord{
		id:     fmt.Sprintf("%s-%d", entity, len(s.records)+1),
		entity: e,
		values: make(map[string]types.Value),
	}
	s.records = append(s.records, r)
	return r, nil
}

func (s *memStore) Discard(record types.Record) error {
	s.records = slices.DeleteFunc(s.records, func(r *memRecord) bool { return r.id == record.ID() })
	return nil
}

func (s *memStore) Save() error {
	s.saves++
	return nil
}

func (s *memStore) count(entity string) int {
	n := 0
	for _, r := range s.records {
		if r.entity.Name == entity {
			n++
		}
	}
	return n
}

// counterEntity is the {identifier, count, label} record kind.
var counterEntity = types.Entity{
	Name:       "Counter",
	Identifier: "identifier",
	Attributes: []types.Attribute{
		{Name: "identifier", Type: types.AttributeString},
		{Name: "count", Type: types.AttributeInteger64},
		{Name: "label", Type: types.AttributeString, Optional: true},
	},
}

type counter struct {
	Identifier string
	Count      int
	Label      *string
}

func (c counter) RecordIdentifier() Identifier {
	return KeyIdentifier{Entity: "Counter", Attribute: "identifier", Key: types.StringValue(c.Identifier)}
}

func (c counter) EncodeRecord(enc *Encoder) error {
	kc := enc.KeyedContainer()
	if err := kc.EncodeString("identifier", c.Identifier); err != nil {
		return err
	}
	if err := kc.EncodeInt("count", c.Count); err != nil {
		return err
	}
	return EncodeIfPresent(kc, "label", c.Label)
}

// fakeEntity declares one attribute per supported storage type.
var fakeEntity = types.Entity{
	Name:       "FakeAttributes",
	Identifier: "identifier",
	Attributes: []types.Attribute{
		{Name: "identifier", Type: types.AttributeString},
		{Name: "boolean", Type: types.AttributeBoolean},
		{Name: "data", Type: types.AttributeBinary},
		{Name: "date", Type: types.AttributeDate},
		{Name: "decimal", Type: types.AttributeDecimal},
		{Name: "double", Type: types.AttributeDouble},
		{Name: "float", Type: types.AttributeFloat},
		{Name: "int8", Type: types.AttributeInteger16},
		{Name: "int16", Type: types.AttributeInteger16},
		{Name: "int32", Type: types.AttributeInteger32},
		{Name: "int64", Type: types.AttributeInteger64},
		{Name: "uint32", Type: types.AttributeInteger64},
		{Name: "string", Type: types.AttributeString},
		{Name: "uri", Type: types.AttributeURI},
		{Name: "uuid", Type: types.AttributeUUID},
		{Name: "uuid_text", Type: types.AttributeString},
		{Name: "enum", Type: types.AttributeString},
		{Name: "optional", Type: types.AttributeString, Optional: true},
	},
}

type color string

const colorRed color = "red"

// EncodeRecord writes the raw value through the single-value container.
func (c color) EncodeRecord(enc *Encoder) error {
	return enc.SingleValueContainer().EncodeString(string(c))
}

type fakeAttributes struct {
	Identifier string
	Boolean    bool
	Data       []byte
	Date       time.Time
	Decimal    *apd.Decimal
	Double     float64
	Float      float32
	Int8       int8
	Int16      int16
	Int32      int32
	Int64      int64
	Uint32     uint32
	String     string
	URI        *url.URL
	UUID       uuid.UUID
	Enum       color
	Optional   *string
}

func (f fakeAttributes) RecordIdentifier() Identifier {
	return KeyIdentifier{Entity: "FakeAttributes", Attribute: "identifier", Key: types.StringValue(f.Identifier)}
}

func (f fakeAttributes) EncodeRecord(enc *Encoder) error {
	c := enc.KeyedContainer()
	steps := []func() error{
		func() error { return c.EncodeString("identifier", f.Identifier) },
		func() error { return c.EncodeBool("boolean", f.Boolean) },
		func() error { return c.EncodeBytes("data", f.Data) },
		func() error { return c.EncodeTime("date", f.Date) },
		func() error { return c.EncodeDecimal("decimal", f.Decimal) },
		func() error { return c.EncodeFloat64("double", f.Double) },
		func() error { return c.EncodeFloat32("float", f.Float) },
		func() error { return c.EncodeInt8("int8", f.Int8) },
		func() error { return c.EncodeInt16("int16", f.Int16) },
		func() error { return c.EncodeInt32("int32", f.Int32) },
		func() error { return c.EncodeInt64("int64", f.Int64) },
		func() error { return c.EncodeUint32("uint32", f.Uint32) },
		func() error { return c.EncodeString("string", f.String) },
		func() error { return c.EncodeURL("uri", f.URI) },
		func() error { return c.EncodeUUID("uuid", f.UUID) },
		func() error { return c.EncodeUUID("uuid_text", f.UUID) },
		func() error { return c.Encode("enum", f.Enum) },
		func() error { return EncodeIfPresent(c, "optional", f.Optional) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// encoderFor binds a fresh encoder to a newly inserted record of entity.
func encoderFor(s *memStore, entity string) (*Encoder, types.Record) {
	rec, err := s.Insert(entity)
	if err != nil {
		panic(err)
	}
	return newEncoder(s, rec, nil, false, nil), rec
}

// mustValue reads an attribute or panics; for test assertions only.
func mustValue(rec types.Record, name string) types.Value {
	v, err := rec.Value(name)
	if err != nil {
		panic(err)
	}
	return v
}
