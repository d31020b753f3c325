package types

import (
	"fmt"
	"math"
)

// AttributeType is the declared storage type of an entity attribute.
type AttributeType uint8

// Declared storage types. The set is closed; Coerce matches on it exhaustively.
const (
	AttributeUndefined AttributeType = iota
	AttributeBoolean
	AttributeInteger16
	AttributeInteger32
	AttributeInteger64
	AttributeFloat
	AttributeDouble
	AttributeDecimal
	AttributeString
	AttributeDate
	AttributeBinary
	AttributeURI
	AttributeUUID
)

var attributeTypeNames = map[AttributeType]string{
	AttributeBoolean:   "boolean",
	AttributeInteger16: "integer16",
	AttributeInteger32: "integer32",
	AttributeInteger64: "integer64",
	AttributeFloat:     "float",
	AttributeDouble:    "double",
	AttributeDecimal:   "decimal",
	AttributeString:    "string",
	AttributeDate:      "date",
	AttributeBinary:    "binary",
	AttributeURI:       "uri",
	AttributeUUID:      "uuid",
}

// String returns the schema name of the attribute type.
func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}
	return "undefined"
}

// ParseAttributeType returns the AttributeType for a schema name.
// Returns ErrInvalidAttributeType if the name is not recognized.
func ParseAttributeType(name string) (AttributeType, error) {
	for t, n := range attributeTypeNames {
		if n == name {
			return t, nil
		}
	}
	return AttributeUndefined, fmt.Errorf("%w: %q", ErrInvalidAttributeType, name)
}

// Attribute is a single named, typed slot of an entity schema.
type Attribute struct {
	Name     string        // Attribute name, matched against field keys.
	Type     AttributeType // Declared storage type.
	Optional bool          // Whether the slot may hold null.
}

// Coerce checks v against the declared type and returns the value to store.
// URI and UUID values written to string attributes are converted to their
// string form; integers are normalized to KindInt; values for float
// attributes are rounded to single precision.
// Returns ErrValueRequired for null on a non-optional attribute and
// ErrTypeMismatch when the kinds are incompatible.
func (a Attribute) Coerce(v Value) (Value, error) {
	if v.IsNull() {
		if !a.Optional {
			return Value{}, ErrValueRequired
		}
		return v, nil
	}

	switch a.Type {
	case AttributeBoolean:
		if v.Kind() == KindBool {
			return v, nil
		}
	case AttributeInteger16:
		return coerceInteger(v, math.MinInt16, math.MaxInt16)
	case AttributeInteger32:
		return coerceInteger(v, math.MinInt32, math.MaxInt32)
	case AttributeInteger64:
		return coerceInteger(v, math.MinInt64, math.MaxInt64)
	case AttributeFloat:
		if v.Kind() == KindFloat {
			return coerceFloat32(v)
		}
	case AttributeDouble:
		if v.Kind() == KindFloat {
			return v, nil
		}
	case AttributeDecimal:
		if v.Kind() == KindDecimal {
			return v, nil
		}
	case AttributeString:
		switch v.Kind() {
		case KindString:
			return v, nil
		case KindURI:
			u, _ := v.URI()
			return StringValue(u.String()), nil
		case KindUUID:
			id, _ := v.UUID()
			return StringValue(id.String()), nil
		}
	case AttributeDate:
		if v.Kind() == KindTime {
			return v, nil
		}
	case AttributeBinary:
		if v.Kind() == KindBytes {
			return v, nil
		}
	case AttributeURI:
		if v.Kind() == KindURI {
			return v, nil
		}
	case AttributeUUID:
		if v.Kind() == KindUUID {
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("%w: %s value for %s attribute %q", ErrTypeMismatch, v.Kind(), a.Type, a.Name)
}

func coerceInteger(v Value, lo, hi int64) (Value, error) {
	switch v.Kind() {
	case KindInt:
		i, _ := v.Int()
		if i >= lo && i <= hi {
			return v, nil
		}
		return Value{}, fmt.Errorf("%w: %d out of range [%d, %d]", ErrTypeMismatch, i, lo, hi)
	case KindUint:
		u, _ := v.Uint()
		if u <= uint64(hi) {
			return IntValue(int64(u)), nil
		}
		return Value{}, fmt.Errorf("%w: %d out of range [%d, %d]", ErrTypeMismatch, u, lo, hi)
	}
	return Value{}, fmt.Errorf("%w: %s value for integer attribute", ErrTypeMismatch, v.Kind())
}

// coerceFloat32 rounds v to single precision. Finite values beyond the
// float32 range are rejected rather than stored as infinity.
func coerceFloat32(v Value) (Value, error) {
	f, _ := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return v, nil
	}
	if math.Abs(f) > math.MaxFloat32 {
		return Value{}, fmt.Errorf("%w: %g out of float range", ErrTypeMismatch, f)
	}
	return FloatValue(float64(float32(f))), nil
}
