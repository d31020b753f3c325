// Package document adapts schemaless documents, as decoded from JSON or
// YAML, into values the record encoder can write. Each field is converted
// according to the declared type of the attribute it names.
package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Document is one record's worth of fields for an entity. It implements
// pantry.Codable.
type Document struct {
	entity types.Entity
	fields map[string]any
	key    types.Value
}

var _ pantry.Codable = (*Document)(nil)

// New returns a document for entity. The identifying field must be present
// and convertible to the identifier's declared type.
func New(entity types.Entity, fields map[string]any) (*Document, error) {
	attr, ok := entity.Attribute(entity.Identifier)
	if !ok {
		return nil, fmt.Errorf("entity %s: %w: identifier %q", entity.Name, types.ErrAttributeNotFound, entity.Identifier)
	}
	raw, ok := fields[entity.Identifier]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s document: %w: %s", entity.Name, types.ErrValueRequired, entity.Identifier)
	}
	leaf, err := leafValue(convert(attr, raw))
	if err != nil {
		return nil, fmt.Errorf("%s document field %s: %w", entity.Name, entity.Identifier, err)
	}
	key, err := attr.Coerce(leaf)
	if err != nil {
		return nil, fmt.Errorf("%s document field %s: %w", entity.Name, entity.Identifier, err)
	}
	return &Document{entity: entity, fields: fields, key: key}, nil
}

// Entity returns the entity the document is encoded into.
func (d *Document) Entity() types.Entity { return d.entity }

// Key returns the identifying value.
func (d *Document) Key() types.Value { return d.key }

// RecordIdentifier implements pantry.Codable.
func (d *Document) RecordIdentifier() pantry.Identifier {
	return pantry.KeyIdentifier{Entity: d.entity.Name, Attribute: d.entity.Identifier, Key: d.key}
}

// EncodeRecord implements pantry.Encodable. Fields are written in name order.
func (d *Document) EncodeRecord(enc *pantry.Encoder) error {
	return encodeFields(enc.KeyedContainer(), d.entity, d.fields)
}

// object is a nested document. Its fields flatten onto the same record.
type object struct {
	entity types.Entity
	fields map[string]any
}

func (o object) EncodeRecord(enc *pantry.Encoder) error {
	return encodeFields(enc.KeyedContainer(), o.entity, o.fields)
}

// array is a sequence field. Records have no array attributes, so every
// element is rejected by the unkeyed container.
type array []any

func (a array) EncodeRecord(enc *pantry.Encoder) error {
	uc := enc.UnkeyedContainer()
	for _, v := range a {
		if v == nil {
			if err := uc.EncodeNil(); err != nil {
				return err
			}
			continue
		}
		if err := uc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func encodeFields(kc *pantry.KeyedContainer, entity types.Entity, fields map[string]any) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := encodeField(kc, entity, name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(kc *pantry.KeyedContainer, entity types.Entity, name string, raw any) error {
	switch v := raw.(type) {
	case nil:
		return kc.EncodeNil(name)
	case map[string]any:
		return kc.Encode(name, object{entity: entity, fields: v})
	case []any:
		return kc.Encode(name, array(v))
	}

	var leaf any
	if attr, ok := entity.Attribute(name); ok {
		leaf = convert(attr, raw)
	} else {
		leaf = natural(raw)
	}
	if _, err := leafValue(leaf); err != nil {
		return fmt.Errorf("field %s: %w", name, err)
	}
	return kc.Encode(name, leaf)
}

// convert turns a decoded document value into the Go leaf type matching the
// attribute's declared type. Values that cannot be converted are returned
// in their natural form so the encoder reports the mismatch.
func convert(attr types.Attribute, raw any) any {
	switch attr.Type {
	case types.AttributeInteger16, types.AttributeInteger32, types.AttributeInteger64:
		switch v := raw.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				return i
			}
		case float64:
			if v == float64(int64(v)) {
				return int64(v)
			}
		case string:
			if i, err := strconv.ParseInt(v, 10, 64); err == nil {
				return i
			}
		}
	case types.AttributeFloat, types.AttributeDouble:
		switch v := raw.(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f
			}
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	case types.AttributeDecimal:
		var text string
		switch v := raw.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = v
		case int:
			text = strconv.Itoa(v)
		case float64:
			text = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if text != "" {
			if d, _, err := apd.NewFromString(text); err == nil {
				return d
			}
		}
	case types.AttributeDate:
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t
			}
		}
	case types.AttributeBinary:
		if s, ok := raw.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b
			}
		}
	case types.AttributeURI:
		if s, ok := raw.(string); ok {
			if u, err := url.Parse(s); err == nil {
				return u
			}
		}
	case types.AttributeUUID:
		if s, ok := raw.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return natural(raw)
}

// natural maps decoder-specific number types onto boxable leaves.
func natural(raw any) any {
	n, ok := raw.(json.Number)
	if !ok {
		return raw
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// leafValue boxes v, reporting types the encoder cannot box as an error
// instead of a fault.
func leafValue(v any) (types.Value, error) {
	switch v.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, string, []byte, time.Time, *apd.Decimal, *url.URL, uuid.UUID:
		return pantry.Box(v), nil
	}
	return types.Value{}, fmt.Errorf("%w: unsupported document value %T", types.ErrTypeMismatch, v)
}
