package pantry

import (
	"fmt"
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// UnkeyedContainer is the sequential container. A record has no ordered
// attributes, so every value is rejected with a type mismatch and Count
// stays at zero. Nil is a no-op unless the encoder runs in strict-nil mode.
type UnkeyedContainer struct {
	enc *Encoder
}

// Path returns the field path of the container.
func (c *UnkeyedContainer) Path() Path { return c.enc.Path() }

// Count returns the number of encoded elements, which is always zero.
func (c *UnkeyedContainer) Count() int { return 0 }

func (c *UnkeyedContainer) reject(what string) error {
	return c.enc.withKey(IndexKey(c.Count()), func() error {
		return c.enc.errorf(KindTypeMismatch, nil, "cannot encode %s into an unkeyed container of entity %s",
			what, c.enc.record.EntityName())
	})
}

// EncodeNil does nothing, or fails in strict-nil mode.
func (c *UnkeyedContainer) EncodeNil() error {
	if c.enc.strictNil {
		return c.reject("nil")
	}
	return nil
}

func (c *UnkeyedContainer) EncodeBool(bool) error { return c.reject("bool") }

func (c *UnkeyedContainer) EncodeInt(int) error { return c.reject("int") }

func (c *UnkeyedContainer) EncodeInt8(int8) error { return c.reject("int8") }

func (c *UnkeyedContainer) EncodeInt16(int16) error { return c.reject("int16") }

func (c *UnkeyedContainer) EncodeInt32(int32) error { return c.reject("int32") }

func (c *UnkeyedContainer) EncodeInt64(int64) error { return c.reject("int64") }

func (c *UnkeyedContainer) EncodeUint(uint) error { return c.reject("uint") }

func (c *UnkeyedContainer) EncodeUint8(uint8) error { return c.reject("uint8") }

func (c *UnkeyedContainer) EncodeUint16(uint16) error { return c.reject("uint16") }

func (c *UnkeyedContainer) EncodeUint32(uint32) error { return c.reject("uint32") }

func (c *UnkeyedContainer) EncodeUint64(uint64) error { return c.reject("uint64") }

func (c *UnkeyedContainer) EncodeFloat32(float32) error { return c.reject("float32") }

func (c *UnkeyedContainer) EncodeFloat64(float64) error { return c.reject("float64") }

func (c *UnkeyedContainer) EncodeString(string) error { return c.reject("string") }

func (c *UnkeyedContainer) EncodeBytes([]byte) error { return c.reject("[]byte") }

func (c *UnkeyedContainer) EncodeTime(time.Time) error { return c.reject("time.Time") }

func (c *UnkeyedContainer) EncodeDecimal(*apd.Decimal) error { return c.reject("decimal") }

func (c *UnkeyedContainer) EncodeURL(*url.URL) error { return c.reject("url") }

func (c *UnkeyedContainer) EncodeUUID(uuid.UUID) error { return c.reject("uuid") }

// Encode rejects leaf and composite values alike. Encoding related records
// into a sequence is not supported.
func (c *UnkeyedContainer) Encode(v any) error {
	return c.reject(fmt.Sprintf("%T", v))
}

// NestedKeyedContainer is not supported.
func (c *UnkeyedContainer) NestedKeyedContainer() *KeyedContainer {
	fault(c.enc.Path(), "nested keyed containers are not supported")
	return nil
}

// NestedUnkeyedContainer is not supported.
func (c *UnkeyedContainer) NestedUnkeyedContainer() *UnkeyedContainer {
	fault(c.enc.Path(), "nested unkeyed containers are not supported")
	return nil
}

// SuperEncoder returns the encoder the container writes through.
func (c *UnkeyedContainer) SuperEncoder() *Encoder { return c.enc }
