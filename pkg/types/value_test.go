package types

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
	assert.Nil(t, v.Interface())
	assert.True(t, v.Equal(Null()))
}

func TestValueAccessors(t *testing.T) {
	i, ok := IntValue(-7).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(-7), i)

	_, ok = IntValue(7).Uint()
	assert.False(t, ok, "int value must not read as uint")

	u, ok := UintValue(math.MaxUint64).Uint()
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), u)

	s, ok := StringValue("pantry").Text()
	assert.True(t, ok)
	assert.Equal(t, "pantry", s)

	_, ok = BoolValue(true).Text()
	assert.False(t, ok)
}

func TestValueCopiesMutableInputs(t *testing.T) {
	blob := []byte{0x01, 0x02}
	v := BytesValue(blob)
	blob[0] = 0xff
	got, ok := v.Bytes()
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, got)

	d := apd.New(12345, -2)
	dv := DecimalValue(d)
	d.SetInt64(0)
	gotDec, ok := dv.Decimal()
	require.True(t, ok)
	assert.Equal(t, "123.45", gotDec.String())

	link, err := url.Parse("https://example.com/a")
	require.NoError(t, err)
	uv := URIValue(link)
	link.Path = "/b"
	gotURI, ok := uv.URI()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", gotURI.String())
}

func TestValueNilInputsBoxAsNull(t *testing.T) {
	assert.True(t, DecimalValue(nil).IsNull())
	assert.True(t, BytesValue(nil).IsNull())
	assert.True(t, URIValue(nil).IsNull())
}

func TestValueEqual(t *testing.T) {
	now := time.Now()
	a, _, err := apd.NewFromString("1.50")
	require.NoError(t, err)
	b, _, err := apd.NewFromString("1.5")
	require.NoError(t, err)
	id := uuid.New()

	assert.True(t, DecimalValue(a).Equal(DecimalValue(b)), "decimals compare numerically")
	assert.True(t, TimeValue(now).Equal(TimeValue(now.UTC())), "times compare by instant")
	assert.True(t, FloatValue(math.NaN()).Equal(FloatValue(math.NaN())))
	assert.True(t, UUIDValue(id).Equal(UUIDValue(id)))
	assert.False(t, IntValue(1).Equal(UintValue(1)), "kinds must match")
	assert.False(t, StringValue("a").Equal(StringValue("b")))
}

func TestParseValueKind(t *testing.T) {
	for k := KindNull; k <= KindUUID; k++ {
		got, err := ParseValueKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseValueKind("complex")
	assert.Error(t, err)
}
