package sqlstore

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// record is a registered record of the unit of work. Its values are the
// in-memory state; dirty names the attributes written since the last Save.
type record struct {
	backend *Backend
	id      string
	entity  types.Entity
	created time.Time
	values  map[string]types.Value
	dirty   map[string]bool
	pending bool // inserted and not yet saved
}

var _ types.Record = (*record)(nil)

func (r *record) ID() string { return r.id }

func (r *record) EntityName() string { return r.entity.Name }

func (r *record) Attribute(name string) (types.Attribute, bool) {
	return r.entity.Attribute(name)
}

func (r *record) Schema() map[string]types.Attribute { return r.entity.Schema() }

func (r *record) Value(name string) (types.Value, error) {
	if _, ok := r.entity.Attribute(name); !ok {
		return types.Value{}, fmt.Errorf("%w: %s.%s", types.ErrAttributeNotFound, r.entity.Name, name)
	}
	r.backend.mu.RLock()
	defer r.backend.mu.RUnlock()
	return r.values[name], nil
}

// SetValue records v as the new value of an attribute. It reaches the
// database on the next Save.
func (r *record) SetValue(name string, v types.Value) error {
	attr, ok := r.entity.Attribute(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", types.ErrAttributeNotFound, r.entity.Name, name)
	}
	stored, err := attr.Coerce(v)
	if err != nil {
		return err
	}

	r.backend.mu.Lock()
	defer r.backend.mu.Unlock()

	if !r.backend.attached {
		return types.ErrStoreDetached
	}
	r.values[name] = stored
	r.dirty[name] = true
	return nil
}

// changed reports whether the record has unsaved state.
func (r *record) changed() bool {
	return r.pending || len(r.dirty) > 0
}

// complete reports ErrValueRequired when a pending insert leaves a
// non-optional attribute null. Saved records are not checked: attributes
// added by a later DefineEntity are null on them until written.
func (r *record) complete() error {
	if !r.pending {
		return nil
	}
	for _, a := range r.entity.Attributes {
		if !a.Optional && r.values[a.Name].IsNull() {
			return fmt.Errorf("%w: %s %s attribute %q", types.ErrValueRequired, r.entity.Name, r.id, a.Name)
		}
	}
	return nil
}
