package pantry

import (
	"net/url"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Box converts a supported primitive into its storage value. The supported
// set is closed: bool, every sized int and uint, float32, float64, string,
// []byte, time.Time, apd.Decimal, url.URL, and uuid.UUID (pointer forms of
// the decimal and URL types included). Any other type panics with an
// *InvariantError. Nil is not boxed; encode it with EncodeNil.
func Box(v any) types.Value {
	boxed, ok := box(v)
	if !ok {
		fault(nil, "cannot box value of type %T", v)
	}
	return boxed
}

func box(v any) (types.Value, bool) {
	switch x := v.(type) {
	case bool:
		return types.BoolValue(x), true
	case int:
		return types.IntValue(int64(x)), true
	case int8:
		return types.IntValue(int64(x)), true
	case int16:
		return types.IntValue(int64(x)), true
	case int32:
		return types.IntValue(int64(x)), true
	case int64:
		return types.IntValue(x), true
	case uint:
		return types.UintValue(uint64(x)), true
	case uint8:
		return types.UintValue(uint64(x)), true
	case uint16:
		return types.UintValue(uint64(x)), true
	case uint32:
		return types.UintValue(uint64(x)), true
	case uint64:
		return types.UintValue(x), true
	case float32:
		return types.FloatValue(float64(x)), true
	case float64:
		return types.FloatValue(x), true
	case string:
		return types.StringValue(x), true
	case []byte:
		return types.BytesValue(x), true
	case time.Time:
		return types.TimeValue(x), true
	case *apd.Decimal:
		return types.DecimalValue(x), true
	case apd.Decimal:
		return types.DecimalValue(&x), true
	case *url.URL:
		return types.URIValue(x), true
	case url.URL:
		return types.URIValue(&x), true
	case uuid.UUID:
		return types.UUIDValue(x), true
	}
	return types.Value{}, false
}
