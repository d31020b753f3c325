package pantry

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Identifier resolves itself to exactly one record of a store.
type Identifier interface {
	// FindOrCreate returns the record identified by the receiver, inserting
	// it when absent. Repeated calls with the same key return the same record.
	FindOrCreate(store types.Store) (types.Record, error)
}

// KeyIdentifier identifies a record by the value of its identifying attribute.
type KeyIdentifier struct {
	Entity    string
	Attribute string
	Key       types.Value
}

// FindOrCreate implements Identifier.
func (k KeyIdentifier) FindOrCreate(store types.Store) (types.Record, error) {
	return FindOrCreate(store, k.Entity, k.Attribute, k.Key)
}

// IdentifierFromRecord derives the identifier of an existing record from its
// identifying attribute. It reports false when the record has no such
// attribute or the attribute is null.
func IdentifierFromRecord(record types.Record, attribute string) (KeyIdentifier, bool) {
	v, err := record.Value(attribute)
	if err != nil || v.IsNull() {
		return KeyIdentifier{}, false
	}
	return KeyIdentifier{Entity: record.EntityName(), Attribute: attribute, Key: v}, true
}

// FindOrCreate fetches the single record of entity whose attribute equals key.
// When no record matches it inserts one and sets the identifying attribute.
//
// The read and the conditional insert are not atomic. Callers must serialize
// resolution against one store; two unserialized resolutions of the same key
// can both insert.
func FindOrCreate(store types.Store, entity, attribute string, key types.Value) (types.Record, error) {
	record, err := store.FetchOne(entity, attribute, key)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("fetch %s where %s = %s: %w", entity, attribute, key, err)
	}

	record, err = store.Insert(entity)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", entity, err)
	}
	if err := record.SetValue(attribute, key); err != nil {
		return nil, fmt.Errorf("set identifier %s.%s: %w", entity, attribute, err)
	}
	return record, nil
}

// FindOrCreateAll resolves each identifier in order.
func FindOrCreateAll[T Identifier](store types.Store, ids []T) ([]types.Record, error) {
	records := make([]types.Record, 0, len(ids))
	for _, id := range ids {
		record, err := id.FindOrCreate(store)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
