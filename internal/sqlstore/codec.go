package sqlstore

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Values are stored as a kind tag plus a CBOR payload. Floats keep their full
// width and NaN payloads; times are RFC 3339 text with nanoseconds.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		ShortestFloat: cbor.ShortestFloatNone,
		NaNConvert:    cbor.NaNConvertNone,
		InfConvert:    cbor.InfConvertNone,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic("sqlstore: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sqlstore: CBOR decoder initialization failed: " + err.Error())
	}
}

// encodeValue returns the kind tag, CBOR payload, and lookup text of v.
// Null has no payload and no lookup text.
func encodeValue(v types.Value) (kind string, payload []byte, lookup sql.NullString, err error) {
	kind = v.Kind().String()
	if v.IsNull() {
		return kind, nil, sql.NullString{}, nil
	}

	var wire any
	switch v.Kind() {
	case types.KindBool:
		wire, _ = v.Bool()
	case types.KindInt:
		wire, _ = v.Int()
	case types.KindUint:
		wire, _ = v.Uint()
	case types.KindFloat:
		wire, _ = v.Float()
	case types.KindDecimal:
		d, _ := v.Decimal()
		wire = d.String()
	case types.KindString:
		wire, _ = v.Text()
	case types.KindBytes:
		wire, _ = v.Bytes()
	case types.KindTime:
		wire, _ = v.Time()
	case types.KindURI:
		u, _ := v.URI()
		wire = u.String()
	case types.KindUUID:
		id, _ := v.UUID()
		wire = id[:]
	default:
		return "", nil, sql.NullString{}, fmt.Errorf("encode %s value: %w", v.Kind(), types.ErrTypeMismatch)
	}

	payload, err = encMode.Marshal(wire)
	if err != nil {
		return "", nil, sql.NullString{}, fmt.Errorf("encode %s value: %w", v.Kind(), err)
	}
	return kind, payload, sql.NullString{String: lookupText(v), Valid: true}, nil
}

// decodeValue reverses encodeValue.
func decodeValue(kind string, payload []byte) (types.Value, error) {
	k, err := types.ParseValueKind(kind)
	if err != nil {
		return types.Value{}, err
	}
	if k == types.KindNull {
		return types.Null(), nil
	}

	switch k {
	case types.KindBool:
		var b bool
		err = decMode.Unmarshal(payload, &b)
		return types.BoolValue(b), wrapDecode(k, err)
	case types.KindInt:
		var i int64
		err = decMode.Unmarshal(payload, &i)
		return types.IntValue(i), wrapDecode(k, err)
	case types.KindUint:
		var u uint64
		err = decMode.Unmarshal(payload, &u)
		return types.UintValue(u), wrapDecode(k, err)
	case types.KindFloat:
		var f float64
		err = decMode.Unmarshal(payload, &f)
		return types.FloatValue(f), wrapDecode(k, err)
	case types.KindDecimal:
		var s string
		if err := decMode.Unmarshal(payload, &s); err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		return types.DecimalValue(d), nil
	case types.KindString:
		var s string
		err = decMode.Unmarshal(payload, &s)
		return types.StringValue(s), wrapDecode(k, err)
	case types.KindBytes:
		var b []byte
		if err := decMode.Unmarshal(payload, &b); err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		if b == nil {
			b = []byte{}
		}
		return types.BytesValue(b), nil
	case types.KindTime:
		var t time.Time
		err = decMode.Unmarshal(payload, &t)
		return types.TimeValue(t), wrapDecode(k, err)
	case types.KindURI:
		var s string
		if err := decMode.Unmarshal(payload, &s); err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		u, err := url.Parse(s)
		if err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		return types.URIValue(u), nil
	case types.KindUUID:
		var b []byte
		if err := decMode.Unmarshal(payload, &b); err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		id, err := uuid.FromBytes(b)
		if err != nil {
			return types.Value{}, wrapDecode(k, err)
		}
		return types.UUIDValue(id), nil
	}
	return types.Value{}, fmt.Errorf("decode %s value: %w", k, types.ErrTypeMismatch)
}

func wrapDecode(k types.ValueKind, err error) error {
	if err != nil {
		return fmt.Errorf("decode %s value: %w", k, err)
	}
	return nil
}

// lookupText renders v in a canonical text form so that values reported
// equal by types.Value.Equal share one lookup key.
func lookupText(v types.Value) string {
	switch v.Kind() {
	case types.KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b)
	case types.KindInt:
		i, _ := v.Int()
		return strconv.FormatInt(i, 10)
	case types.KindUint:
		u, _ := v.Uint()
		return strconv.FormatUint(u, 10)
	case types.KindFloat:
		f, _ := v.Float()
		if f == 0 {
			f = 0 // fold -0
		}
		if math.IsNaN(f) {
			return "NaN"
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case types.KindDecimal:
		d, _ := v.Decimal()
		if d.IsZero() {
			return "0"
		}
		var reduced apd.Decimal
		reduced.Reduce(d)
		return reduced.String()
	case types.KindString:
		s, _ := v.Text()
		return s
	case types.KindBytes:
		b, _ := v.Bytes()
		return hex.EncodeToString(b)
	case types.KindTime:
		t, _ := v.Time()
		return t.UTC().Format(time.RFC3339Nano)
	case types.KindURI:
		u, _ := v.URI()
		return u.String()
	case types.KindUUID:
		id, _ := v.UUID()
		return id.String()
	}
	return ""
}
