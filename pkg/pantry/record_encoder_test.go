package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// badCounter writes a string into the integer count attribute.
type badCounter struct{ counter }

func (b badCounter) EncodeRecord(enc *Encoder) error {
	kc := enc.KeyedContainer()
	if err := kc.EncodeString("identifier", b.Identifier); err != nil {
		return err
	}
	return kc.EncodeString("count", "many")
}

func batch() []Codable {
	return []Codable{
		counter{Identifier: "a", Count: 1},
		badCounter{counter{Identifier: "b"}},
		counter{Identifier: "c", Count: 3},
	}
}

func TestEncodeAllFailFast(t *testing.T) {
	store := newMemStore(counterEntity)

	records, err := EncodeAll(NewRecordEncoder(store), batch())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "element 1")
	assert.Equal(t, 1, store.count("Counter"), "the failed element is discarded and later elements are not resolved")
}

func TestEncodeAllContinueOnError(t *testing.T) {
	store := newMemStore(counterEntity)
	core, logs := observer.New(zap.WarnLevel)

	r := NewRecordEncoder(store, WithBatchPolicy(ContinueOnError), WithLogger(zap.New(core)))
	records, err := EncodeAll(r, batch())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	require.Len(t, records, 2)
	assert.Equal(t, "a", text(t, records[0], "identifier"))
	assert.Equal(t, "c", text(t, records[1], "identifier"))
	assert.Equal(t, 1, logs.FilterMessage("skipping element").Len())
	assert.Equal(t, 2, store.count("Counter"), "the skipped element's record is discarded")
}

// partialCounter writes count and then fails on label.
type partialCounter struct{ counter }

func (p partialCounter) EncodeRecord(enc *Encoder) error {
	kc := enc.KeyedContainer()
	if err := kc.EncodeInt("count", p.Count); err != nil {
		return err
	}
	return kc.EncodeBool("label", true)
}

func TestEncodeFailureRestoresExistingRecord(t *testing.T) {
	store := newMemStore(counterEntity)
	label := "kept"
	rec, err := Encode(store, counter{Identifier: "a", Count: 1, Label: &label})
	require.NoError(t, err)

	_, err = Encode(store, partialCounter{counter{Identifier: "a", Count: 99}})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 1, store.count("Counter"))
	assert.Equal(t, int64(1), integer(t, rec, "count"))
	assert.Equal(t, "kept", text(t, rec, "label"))
}

// plainStore hides the Discard method of the store it wraps.
type plainStore struct{ types.Store }

func TestEncodeFailureWithoutDiscarderWarns(t *testing.T) {
	store := newMemStore(counterEntity)
	core, logs := observer.New(zap.WarnLevel)

	r := NewRecordEncoder(plainStore{store}, WithLogger(zap.New(core)))
	_, err := r.Encode(badCounter{counter{Identifier: "b"}})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 1, store.count("Counter"), "the record cannot be discarded")
	assert.Equal(t, 1, logs.FilterMessageSnippet("cannot discard").Len())
}

func TestEncodeAllEmpty(t *testing.T) {
	records, err := EncodeAll(NewRecordEncoder(newMemStore(counterEntity)), []counter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

type anonymous struct{}

func (anonymous) RecordIdentifier() Identifier    { return nil }
func (anonymous) EncodeRecord(enc *Encoder) error { return nil }

func TestEncodeNilIdentifierPanics(t *testing.T) {
	store := newMemStore(counterEntity)
	assertInvariantPanic(t, func() { _, _ = Encode(store, anonymous{}) })
}

func TestEncodeResolveError(t *testing.T) {
	store := newMemStore()
	_, err := Encode(store, counter{Identifier: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve record")
}
