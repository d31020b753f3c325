package sqlstore

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// DefineEntity creates or replaces the schema of an entity. Records already
// handed out keep the schema they were loaded with.
func (b *Backend) DefineEntity(e types.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(b.dialect.rebind(upsertEntity), e.Name, e.Identifier); err != nil {
		return fmt.Errorf("define entity %s: %w", e.Name, err)
	}
	if _, err := tx.Exec(b.dialect.rebind(deleteAttributes), e.Name); err != nil {
		return fmt.Errorf("define entity %s: %w", e.Name, err)
	}
	for i, a := range e.Attributes {
		_, err := tx.Exec(b.dialect.rebind(insertAttribute), e.Name, a.Name, a.Type.String(), boolToInt(a.Optional), i)
		if err != nil {
			return fmt.Errorf("define attribute %s.%s: %w", e.Name, a.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	e.Attributes = slices.Clone(e.Attributes)
	b.entities[e.Name] = e
	Logger().Debug("defined entity", zap.String("entity", e.Name), zap.Int("attributes", len(e.Attributes)))
	return nil
}

// Entity returns the schema of the named entity.
func (b *Backend) Entity(name string) (types.Entity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Entity{}, types.ErrStoreDetached
	}
	return b.entityLocked(name)
}

// Entities returns all defined entities ordered by name.
func (b *Backend) Entities() ([]types.Entity, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	out := make([]types.Entity, 0, len(b.entities))
	for _, e := range b.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b types.Entity) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (b *Backend) entityLocked(name string) (types.Entity, error) {
	e, ok := b.entities[name]
	if !ok {
		return types.Entity{}, fmt.Errorf("%w: %s", types.ErrEntityNotFound, name)
	}
	return e, nil
}

// loadEntities reads every entity schema from db.
func loadEntities(db *sql.DB, d dialect) (map[string]types.Entity, error) {
	rows, err := db.Query(d.rebind(selectEntities))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := make(map[string]types.Entity)
	for rows.Next() {
		var (
			name, identifier, attr, typeName string
			optional                         int64
		)
		if err := rows.Scan(&name, &identifier, &attr, &typeName, &optional); err != nil {
			return nil, err
		}
		t, err := types.ParseAttributeType(typeName)
		if err != nil {
			return nil, fmt.Errorf("entity %s attribute %s: %w", name, attr, err)
		}
		e := entities[name]
		e.Name = name
		e.Identifier = identifier
		e.Attributes = append(e.Attributes, types.Attribute{Name: attr, Type: t, Optional: optional != 0})
		entities[name] = e
	}
	return entities, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
