package pantry

import (
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// KeyedContainer writes fields to the attributes named by their keys.
type KeyedContainer struct {
	enc *Encoder
}

// Path returns the field path of the container.
func (c *KeyedContainer) Path() Path { return c.enc.Path() }

// put writes v to the attribute named key, with key pushed onto the path.
func (c *KeyedContainer) put(key string, v types.Value) error {
	k := NameKey(key)
	return c.enc.withKey(k, func() error {
		return c.enc.setAttribute(v, k)
	})
}

// EncodeNil clears the attribute.
func (c *KeyedContainer) EncodeNil(key string) error {
	return c.put(key, types.Null())
}

func (c *KeyedContainer) EncodeBool(key string, v bool) error {
	return c.put(key, types.BoolValue(v))
}

func (c *KeyedContainer) EncodeInt(key string, v int) error {
	return c.put(key, types.IntValue(int64(v)))
}

func (c *KeyedContainer) EncodeInt8(key string, v int8) error {
	return c.put(key, types.IntValue(int64(v)))
}

func (c *KeyedContainer) EncodeInt16(key string, v int16) error {
	return c.put(key, types.IntValue(int64(v)))
}

func (c *KeyedContainer) EncodeInt32(key string, v int32) error {
	return c.put(key, types.IntValue(int64(v)))
}

func (c *KeyedContainer) EncodeInt64(key string, v int64) error {
	return c.put(key, types.IntValue(v))
}

func (c *KeyedContainer) EncodeUint(key string, v uint) error {
	return c.put(key, types.UintValue(uint64(v)))
}

func (c *KeyedContainer) EncodeUint8(key string, v uint8) error {
	return c.put(key, types.UintValue(uint64(v)))
}

func (c *KeyedContainer) EncodeUint16(key string, v uint16) error {
	return c.put(key, types.UintValue(uint64(v)))
}

func (c *KeyedContainer) EncodeUint32(key string, v uint32) error {
	return c.put(key, types.UintValue(uint64(v)))
}

func (c *KeyedContainer) EncodeUint64(key string, v uint64) error {
	return c.put(key, types.UintValue(v))
}

func (c *KeyedContainer) EncodeFloat32(key string, v float32) error {
	return c.put(key, types.FloatValue(float64(v)))
}

func (c *KeyedContainer) EncodeFloat64(key string, v float64) error {
	return c.put(key, types.FloatValue(v))
}

func (c *KeyedContainer) EncodeString(key string, v string) error {
	return c.put(key, types.StringValue(v))
}

func (c *KeyedContainer) EncodeBytes(key string, v []byte) error {
	return c.put(key, types.BytesValue(v))
}

func (c *KeyedContainer) EncodeTime(key string, v time.Time) error {
	return c.put(key, types.TimeValue(v))
}

func (c *KeyedContainer) EncodeDecimal(key string, v *apd.Decimal) error {
	return c.put(key, types.DecimalValue(v))
}

// EncodeURL writes a URI. The attribute must be declared uri or string.
func (c *KeyedContainer) EncodeURL(key string, v *url.URL) error {
	return c.put(key, types.URIValue(v))
}

// EncodeUUID writes a UUID. The attribute must be declared uuid or string.
func (c *KeyedContainer) EncodeUUID(key string, v uuid.UUID) error {
	return c.put(key, types.UUIDValue(v))
}

// Encode writes any supported leaf value. An Encodable value that is not a
// leaf is flattened onto the same record: its own EncodeRecord runs against
// the same encoder with key pushed onto the path.
func (c *KeyedContainer) Encode(key string, v any) error {
	if boxed, ok := box(v); ok {
		return c.put(key, boxed)
	}
	nested, ok := v.(Encodable)
	if !ok {
		fault(append(c.enc.Path(), NameKey(key)), "cannot encode value of type %T", v)
	}
	return c.enc.withKey(NameKey(key), func() error {
		c.enc.logger.Debug("flattening nested value",
			zap.Stringer("path", c.enc.path),
			zap.String("entity", c.enc.record.EntityName()))
		return nested.EncodeRecord(c.enc)
	})
}

// EncodeIfPresent encodes *v, or clears the attribute when v is nil.
func EncodeIfPresent[T any](c *KeyedContainer, key string, v *T) error {
	if v == nil {
		return c.EncodeNil(key)
	}
	return c.Encode(key, *v)
}

// NestedKeyedContainer is not supported: nested values flatten through Encode.
func (c *KeyedContainer) NestedKeyedContainer(key string) *KeyedContainer {
	fault(append(c.enc.Path(), NameKey(key)), "nested keyed containers are not supported")
	return nil
}

// NestedUnkeyedContainer is not supported: records have no array attributes.
func (c *KeyedContainer) NestedUnkeyedContainer(key string) *UnkeyedContainer {
	fault(append(c.enc.Path(), NameKey(key)), "nested unkeyed containers are not supported")
	return nil
}

// SuperEncoder is not supported.
func (c *KeyedContainer) SuperEncoder() *Encoder {
	fault(c.enc.Path(), "super encoders are not supported")
	return nil
}

// SuperEncoderForKey is not supported.
func (c *KeyedContainer) SuperEncoderForKey(key string) *Encoder {
	fault(append(c.enc.Path(), NameKey(key)), "super encoders are not supported")
	return nil
}
