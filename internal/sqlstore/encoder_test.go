package sqlstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

type counter struct {
	Identifier string
	Count      int64
	Label      *string
}

func (c counter) RecordIdentifier() pantry.Identifier {
	return pantry.KeyIdentifier{Entity: "Counter", Attribute: "identifier", Key: types.StringValue(c.Identifier)}
}

func (c counter) EncodeRecord(enc *pantry.Encoder) error {
	kc := enc.KeyedContainer()
	if err := kc.EncodeString("identifier", c.Identifier); err != nil {
		return err
	}
	if err := kc.EncodeInt64("count", c.Count); err != nil {
		return err
	}
	return pantry.EncodeIfPresent(kc, "label", c.Label)
}

func TestEncoder_ReencodeAcrossSave(t *testing.T) {
	b, dir := attached(t)
	enc := pantry.NewRecordEncoder(b)

	first, err := enc.Encode(counter{Identifier: "abc", Count: 7})
	require.NoError(t, err)
	require.NoError(t, b.Save())

	require.NoError(t, b.Detach())
	require.NoError(t, b.Attach(sqliteConfig(dir)))

	label := "x"
	second, err := enc.Encode(counter{Identifier: "abc", Count: 9, Label: &label})
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
	require.NoError(t, b.Save())

	n, err := b.Count("Counter")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b.Reset()
	rec, err := b.FetchOne("Counter", "identifier", types.StringValue("abc"))
	require.NoError(t, err)
	count, _ := rec.Value("count")
	assert.True(t, count.Equal(types.IntValue(9)))
	got, _ := rec.Value("label")
	assert.True(t, got.Equal(types.StringValue("x")))
}

func TestEncoder_FailedEncodeKeepsValue(t *testing.T) {
	b, _ := attached(t)

	_, err := pantry.Encode(b, counter{Identifier: "abc", Count: 1})
	require.NoError(t, err)

	rec, err := b.FetchOne("Counter", "identifier", types.StringValue("abc"))
	require.NoError(t, err)
	enc := pantry.NewRecordEncoder(b)
	_, err = enc.Encode(badCount{id: "abc"})
	assert.ErrorIs(t, err, pantry.ErrTypeMismatch)

	count, _ := rec.Value("count")
	assert.True(t, count.Equal(types.IntValue(1)))
}

type badCount struct{ id string }

func (b badCount) RecordIdentifier() pantry.Identifier {
	return pantry.KeyIdentifier{Entity: "Counter", Attribute: "identifier", Key: types.StringValue(b.id)}
}

func (b badCount) EncodeRecord(enc *pantry.Encoder) error {
	return enc.KeyedContainer().EncodeFloat64("count", math.Pi)
}

// partialCount writes count and then fails on label.
type partialCount struct {
	id    string
	count int64
}

func (p partialCount) RecordIdentifier() pantry.Identifier {
	return pantry.KeyIdentifier{Entity: "Counter", Attribute: "identifier", Key: types.StringValue(p.id)}
}

func (p partialCount) EncodeRecord(enc *pantry.Encoder) error {
	kc := enc.KeyedContainer()
	if err := kc.EncodeInt64("count", p.count); err != nil {
		return err
	}
	return kc.EncodeInt64("label", 1)
}

func TestEncoder_SkippedElementsAreNotSaved(t *testing.T) {
	b, _ := attached(t)
	enc := pantry.NewRecordEncoder(b, pantry.WithBatchPolicy(pantry.ContinueOnError))

	records, err := pantry.EncodeAll(enc, []pantry.Codable{
		counter{Identifier: "a", Count: 1},
		badCount{id: "b"},
		counter{Identifier: "c", Count: 3},
	})
	assert.ErrorIs(t, err, pantry.ErrTypeMismatch)
	require.Len(t, records, 2)
	require.NoError(t, b.Save())

	n, err := b.Count("Counter")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = b.FetchOne("Counter", "identifier", types.StringValue("b"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEncoder_FailFastDiscardsFailedElement(t *testing.T) {
	b, _ := attached(t)

	_, err := pantry.EncodeAll(pantry.NewRecordEncoder(b), []pantry.Codable{
		counter{Identifier: "a", Count: 1},
		badCount{id: "b"},
	})
	require.Error(t, err)
	require.NoError(t, b.Save(), "the element before the failure is complete and saves")

	n, err := b.Count("Counter")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEncoder_FailedEncodeRestoresExistingRecord(t *testing.T) {
	b, _ := attached(t)

	rec, err := pantry.Encode(b, counter{Identifier: "abc", Count: 1})
	require.NoError(t, err)
	require.NoError(t, b.Save())

	_, err = pantry.Encode(b, partialCount{id: "abc", count: 99})
	assert.ErrorIs(t, err, pantry.ErrTypeMismatch)

	count, _ := rec.Value("count")
	assert.True(t, count.Equal(types.IntValue(1)), "count written before the failure is rolled back")
	require.NoError(t, b.Save())

	b.Reset()
	reloaded, err := b.FetchOne("Counter", "identifier", types.StringValue("abc"))
	require.NoError(t, err)
	count, _ = reloaded.Value("count")
	assert.True(t, count.Equal(types.IntValue(1)))
}
