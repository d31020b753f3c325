package types

import (
	"bytes"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// ValueKind tags the representation held by a Value.
type ValueKind uint8

// Storage value kinds.
const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindDecimal
	KindString
	KindBytes
	KindTime
	KindURI
	KindUUID
)

var valueKindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindDecimal: "decimal",
	KindString:  "string",
	KindBytes:   "bytes",
	KindTime:    "time",
	KindURI:     "uri",
	KindUUID:    "uuid",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseValueKind returns the kind with the given name.
func ParseValueKind(name string) (ValueKind, error) {
	for k, n := range valueKindNames {
		if n == name {
			return ValueKind(k), nil
		}
	}
	return KindNull, fmt.Errorf("unknown value kind %q", name)
}

// Value is the store-native representation of a primitive written into one
// attribute slot. The zero Value is null.
type Value struct {
	kind ValueKind
	raw  any
}

// Null returns the null value.
func Null() Value { return Value{} }

// BoolValue boxes a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, raw: b} }

// IntValue boxes a signed integer.
func IntValue(i int64) Value { return Value{kind: KindInt, raw: i} }

// UintValue boxes an unsigned integer.
func UintValue(u uint64) Value { return Value{kind: KindUint, raw: u} }

// FloatValue boxes a floating point number. float32 inputs widen exactly.
func FloatValue(f float64) Value { return Value{kind: KindFloat, raw: f} }

// DecimalValue boxes an arbitrary-precision decimal. The decimal is copied.
// A nil decimal boxes as null.
func DecimalValue(d *apd.Decimal) Value {
	if d == nil {
		return Null()
	}
	cp := new(apd.Decimal).Set(d)
	return Value{kind: KindDecimal, raw: cp}
}

// StringValue boxes a string.
func StringValue(s string) Value { return Value{kind: KindString, raw: s} }

// BytesValue boxes a byte blob. The slice is copied; nil boxes as null.
func BytesValue(b []byte) Value {
	if b == nil {
		return Null()
	}
	return Value{kind: KindBytes, raw: bytes.Clone(b)}
}

// TimeValue boxes a timestamp.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, raw: t} }

// URIValue boxes a URI. A nil URI boxes as null.
func URIValue(u *url.URL) Value {
	if u == nil {
		return Null()
	}
	cp := *u
	return Value{kind: KindURI, raw: &cp}
}

// UUIDValue boxes a UUID.
func UUIDValue(id uuid.UUID) Value { return Value{kind: KindUUID, raw: id} }

// Kind returns the kind tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok && v.kind == KindBool
}

// Int returns the signed integer held by v.
func (v Value) Int() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok && v.kind == KindInt
}

// Uint returns the unsigned integer held by v.
func (v Value) Uint() (uint64, bool) {
	u, ok := v.raw.(uint64)
	return u, ok && v.kind == KindUint
}

// Float returns the floating point number held by v.
func (v Value) Float() (float64, bool) {
	f, ok := v.raw.(float64)
	return f, ok && v.kind == KindFloat
}

// Decimal returns a copy of the decimal held by v.
func (v Value) Decimal() (*apd.Decimal, bool) {
	d, ok := v.raw.(*apd.Decimal)
	if !ok || v.kind != KindDecimal {
		return nil, false
	}
	return new(apd.Decimal).Set(d), true
}

// Text returns the string held by v.
func (v Value) Text() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok && v.kind == KindString
}

// Bytes returns a copy of the blob held by v.
func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.raw.([]byte)
	if !ok || v.kind != KindBytes {
		return nil, false
	}
	return bytes.Clone(b), true
}

// Time returns the timestamp held by v.
func (v Value) Time() (time.Time, bool) {
	t, ok := v.raw.(time.Time)
	return t, ok && v.kind == KindTime
}

// URI returns a copy of the URI held by v.
func (v Value) URI() (*url.URL, bool) {
	u, ok := v.raw.(*url.URL)
	if !ok || v.kind != KindURI {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// UUID returns the UUID held by v.
func (v Value) UUID() (uuid.UUID, bool) {
	id, ok := v.raw.(uuid.UUID)
	return id, ok && v.kind == KindUUID
}

// Interface returns the underlying Go value, or nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindDecimal:
		d, _ := v.Decimal()
		return d
	case KindBytes:
		b, _ := v.Bytes()
		return b
	case KindURI:
		u, _ := v.URI()
		return u
	}
	return v.raw
}

// Equal reports whether v and other hold the same kind and an equal value.
// Decimals compare numerically, timestamps by instant, floats bit-for-bit.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindDecimal:
		a, _ := v.raw.(*apd.Decimal)
		b, _ := other.raw.(*apd.Decimal)
		return a.Cmp(b) == 0
	case KindBytes:
		a, _ := v.raw.([]byte)
		b, _ := other.raw.([]byte)
		return bytes.Equal(a, b)
	case KindTime:
		a, _ := v.raw.(time.Time)
		b, _ := other.raw.(time.Time)
		return a.Equal(b)
	case KindURI:
		a, _ := v.raw.(*url.URL)
		b, _ := other.raw.(*url.URL)
		return a.String() == b.String()
	case KindFloat:
		a, _ := v.raw.(float64)
		b, _ := other.raw.(float64)
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	return v.raw == other.raw
}

func (v Value) format() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindDecimal:
		d, _ := v.raw.(*apd.Decimal)
		return d.String()
	case KindBytes:
		b, _ := v.raw.([]byte)
		return fmt.Sprintf("%x", b)
	case KindTime:
		t, _ := v.raw.(time.Time)
		return t.Format(time.RFC3339Nano)
	case KindURI:
		u, _ := v.raw.(*url.URL)
		return u.String()
	}
	return fmt.Sprint(v.raw)
}

// String renders the value for display.
func (v Value) String() string { return v.format() }

// GoString renders v for debugging and test failure output.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.format())
}
