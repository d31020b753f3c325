package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// FetchOne returns the first record of entity whose attribute equals key.
// Records registered in the unit of work, including unsaved inserts, are
// consulted before the database. Returns ErrNotFound if no record matches.
func (b *Backend) FetchOne(entity, attribute string, key types.Value) (types.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	e, err := b.entityLocked(entity)
	if err != nil {
		return nil, err
	}
	attr, ok := e.Attribute(attribute)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrAttributeNotFound, entity, attribute)
	}
	key, err = attr.Coerce(key)
	if err != nil {
		return nil, err
	}
	if key.IsNull() {
		return nil, types.ErrNotFound
	}

	for _, r := range b.order {
		if r.entity.Name == entity && r.values[attribute].Equal(key) {
			return r, nil
		}
	}

	var id string
	err = b.db.QueryRow(b.dialect.rebind(selectRecordByKey), entity, attribute, lookupText(key)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", entity, err)
	}
	if _, ok := b.records[id]; ok {
		// Registered, and its in-memory value no longer matches.
		return nil, types.ErrNotFound
	}

	r, err := b.loadRecord(id, e)
	if err != nil {
		return nil, err
	}
	b.register(r)
	Logger().Debug("fetched record", zap.String("entity", entity), zap.String("record_id", id))
	return r, nil
}

// Insert registers a new record of entity. It is written on Save.
func (b *Backend) Insert(entity string) (types.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	e, err := b.entityLocked(entity)
	if err != nil {
		return nil, err
	}

	r := &record{
		backend: b,
		id:      generateUUID(),
		entity:  e,
		created: now(),
		values:  make(map[string]types.Value),
		dirty:   make(map[string]bool),
		pending: true,
	}
	b.register(r)
	Logger().Debug("inserted record", zap.String("entity", entity), zap.String("record_id", r.id))
	return r, nil
}

// Discard removes an unsaved insert from the unit of work. Saved records
// and records not registered with b are left unchanged.
func (b *Backend) Discard(r types.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[r.ID()]
	if !ok || !rec.pending {
		return nil
	}
	delete(b.records, rec.id)
	b.order = slices.DeleteFunc(b.order, func(o *record) bool { return o == rec })
	Logger().Debug("discarded record", zap.String("entity", rec.entity.Name), zap.String("record_id", rec.id))
	return nil
}

// Save writes all pending inserts and attribute changes in one transaction.
// A pending insert with a null non-optional attribute fails the whole Save
// with ErrValueRequired. On failure nothing is written and the unit of work
// is left as it was.
func (b *Backend) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	for _, r := range b.order {
		if err := r.complete(); err != nil {
			return err
		}
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var inserted, written int
	for _, r := range b.order {
		if !r.changed() {
			continue
		}
		if r.pending {
			_, err := tx.Exec(b.dialect.rebind(insertRecord), r.id, r.entity.Name, r.created.Format(timestampLayout))
			if err != nil {
				return fmt.Errorf("insert %s %s: %w", r.entity.Name, r.id, err)
			}
			inserted++
		}
		for _, a := range r.entity.Attributes {
			if !r.dirty[a.Name] {
				continue
			}
			kind, payload, lookup, err := encodeValue(r.values[a.Name])
			if err != nil {
				return fmt.Errorf("save %s.%s: %w", r.entity.Name, a.Name, err)
			}
			if _, err := tx.Exec(b.dialect.rebind(upsertRecordValue), r.id, a.Name, kind, payload, lookup); err != nil {
				return fmt.Errorf("save %s.%s: %w", r.entity.Name, a.Name, err)
			}
			written++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, r := range b.order {
		r.pending = false
		clear(r.dirty)
	}
	Logger().Debug("saved", zap.Int("inserted", inserted), zap.Int("values", written))
	return nil
}

// Reset discards every unsaved insert and attribute change. Records handed
// out before Reset are detached from the unit of work and must be fetched
// again.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = make(map[string]*record)
	b.order = nil
}

// Records returns the records of entity: saved records in creation order
// followed by unsaved inserts.
func (b *Backend) Records(entity string) ([]types.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	e, err := b.entityLocked(entity)
	if err != nil {
		return nil, err
	}
	ids, err := b.committedIDs(entity)
	if err != nil {
		return nil, err
	}

	out := make([]types.Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := b.records[id]; ok {
			out = append(out, r)
			continue
		}
		r, err := b.loadRecord(id, e)
		if err != nil {
			return nil, err
		}
		b.register(r)
		out = append(out, r)
	}
	for _, r := range b.order {
		if r.pending && r.entity.Name == entity {
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the number of records of entity, saved or pending.
func (b *Backend) Count(entity string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	if _, err := b.entityLocked(entity); err != nil {
		return 0, err
	}

	var n int
	if err := b.db.QueryRow(b.dialect.rebind(countRecords), entity).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", entity, err)
	}
	for _, r := range b.order {
		if r.pending && r.entity.Name == entity {
			n++
		}
	}
	return n, nil
}

func (b *Backend) register(r *record) {
	b.records[r.id] = r
	b.order = append(b.order, r)
}

func (b *Backend) committedIDs(entity string) ([]string, error) {
	rows, err := b.db.Query(b.dialect.rebind(selectRecordIDs), entity)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadRecord reads a saved record's values. The caller must hold b.mu.
func (b *Backend) loadRecord(id string, e types.Entity) (*record, error) {
	rows, err := b.db.Query(b.dialect.rebind(selectRecordValues), id)
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}
	defer rows.Close()

	r := &record{
		backend: b,
		id:      id,
		entity:  e,
		values:  make(map[string]types.Value),
		dirty:   make(map[string]bool),
	}
	for rows.Next() {
		var (
			name, kind string
			payload    []byte
		)
		if err := rows.Scan(&name, &kind, &payload); err != nil {
			return nil, err
		}
		if _, ok := e.Attribute(name); !ok {
			continue // attribute dropped by a later DefineEntity
		}
		v, err := decodeValue(kind, payload)
		if err != nil {
			return nil, fmt.Errorf("load record %s attribute %s: %w", id, name, err)
		}
		r.values[name] = v
	}
	return r, rows.Err()
}
