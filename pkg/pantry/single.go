package pantry

import (
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// SingleValueContainer writes one value to the attribute named by the
// innermost key of the encoder's path. It is what a field type such as a
// string-backed enum uses to encode itself.
type SingleValueContainer struct {
	enc *Encoder
}

// Path returns the field path of the container.
func (c *SingleValueContainer) Path() Path { return c.enc.Path() }

func (c *SingleValueContainer) put(v types.Value) error {
	key, ok := c.enc.path.Last()
	if !ok {
		return c.enc.errorf(KindKeyNotFound, nil, "single value written with an empty coding path")
	}
	return c.enc.setAttribute(v, key)
}

// EncodeNil clears the attribute.
func (c *SingleValueContainer) EncodeNil() error { return c.put(types.Null()) }

func (c *SingleValueContainer) EncodeBool(v bool) error { return c.put(types.BoolValue(v)) }

func (c *SingleValueContainer) EncodeInt(v int) error { return c.put(types.IntValue(int64(v))) }

func (c *SingleValueContainer) EncodeInt8(v int8) error { return c.put(types.IntValue(int64(v))) }

func (c *SingleValueContainer) EncodeInt16(v int16) error { return c.put(types.IntValue(int64(v))) }

func (c *SingleValueContainer) EncodeInt32(v int32) error { return c.put(types.IntValue(int64(v))) }

func (c *SingleValueContainer) EncodeInt64(v int64) error { return c.put(types.IntValue(v)) }

func (c *SingleValueContainer) EncodeUint(v uint) error { return c.put(types.UintValue(uint64(v))) }

func (c *SingleValueContainer) EncodeUint8(v uint8) error { return c.put(types.UintValue(uint64(v))) }

func (c *SingleValueContainer) EncodeUint16(v uint16) error { return c.put(types.UintValue(uint64(v))) }

func (c *SingleValueContainer) EncodeUint32(v uint32) error { return c.put(types.UintValue(uint64(v))) }

func (c *SingleValueContainer) EncodeUint64(v uint64) error { return c.put(types.UintValue(v)) }

func (c *SingleValueContainer) EncodeFloat32(v float32) error {
	return c.put(types.FloatValue(float64(v)))
}

func (c *SingleValueContainer) EncodeFloat64(v float64) error { return c.put(types.FloatValue(v)) }

func (c *SingleValueContainer) EncodeString(v string) error { return c.put(types.StringValue(v)) }

func (c *SingleValueContainer) EncodeBytes(v []byte) error { return c.put(types.BytesValue(v)) }

func (c *SingleValueContainer) EncodeTime(v time.Time) error { return c.put(types.TimeValue(v)) }

func (c *SingleValueContainer) EncodeDecimal(v *apd.Decimal) error {
	return c.put(types.DecimalValue(v))
}

func (c *SingleValueContainer) EncodeURL(v *url.URL) error { return c.put(types.URIValue(v)) }

func (c *SingleValueContainer) EncodeUUID(v uuid.UUID) error { return c.put(types.UUIDValue(v)) }

// Encode writes any supported leaf value. An Encodable value is forwarded
// to the same encoder without adding a path segment.
func (c *SingleValueContainer) Encode(v any) error {
	if boxed, ok := box(v); ok {
		return c.put(boxed)
	}
	nested, ok := v.(Encodable)
	if !ok {
		fault(c.enc.Path(), "cannot encode value of type %T", v)
	}
	return nested.EncodeRecord(c.enc)
}

// NestedKeyedContainer is not supported.
func (c *SingleValueContainer) NestedKeyedContainer() *KeyedContainer {
	fault(c.enc.Path(), "nested keyed containers are not supported")
	return nil
}

// NestedUnkeyedContainer is not supported.
func (c *SingleValueContainer) NestedUnkeyedContainer() *UnkeyedContainer {
	fault(c.enc.Path(), "nested unkeyed containers are not supported")
	return nil
}

// SuperEncoder returns the encoder the container writes through.
func (c *SingleValueContainer) SuperEncoder() *Encoder { return c.enc }
