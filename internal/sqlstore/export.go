package sqlstore

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// RecordIDField is the JSON field carrying the record ID in exported and
// printed records.
const RecordIDField = "_id"

// ExportFileName returns the JSONL file name for an entity.
func ExportFileName(entity string) string {
	return entity + ".jsonl"
}

// Export writes the saved records of every entity to dir, one JSONL file per
// entity. Unsaved changes are not exported. It returns the number of records
// written per entity.
func (b *Backend) Export(dir string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	counts := make(map[string]int, len(b.entities))
	for name, e := range b.entities {
		ids, err := b.committedIDs(name)
		if err != nil {
			return nil, err
		}
		lines := make([]json.RawMessage, 0, len(ids))
		for _, id := range ids {
			r, err := b.loadRecord(id, e)
			if err != nil {
				return nil, err
			}
			line, err := marshalValues(r.id, e, r.values)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		path := filepath.Join(dir, ExportFileName(name))
		if err := writeJSONL(path, lines); err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		counts[name] = len(lines)
		Logger().Debug("exported entity", zap.String("entity", name), zap.Int("records", len(lines)))
	}
	return counts, nil
}

// ReadExport reads the records written by Export for one entity.
func ReadExport(dir, entity string) ([]map[string]any, error) {
	lines, err := readJSONL(filepath.Join(dir, ExportFileName(entity)))
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MarshalRecord renders a record as a JSON object keyed by attribute name,
// plus RecordIDField.
func MarshalRecord(r types.Record) ([]byte, error) {
	schema := r.Schema()
	values := make(map[string]types.Value, len(schema))
	for name := range schema {
		v, err := r.Value(name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	e := types.Entity{Name: r.EntityName()}
	for _, a := range schema {
		e.Attributes = append(e.Attributes, a)
	}
	return marshalValues(r.ID(), e, values)
}

func marshalValues(id string, e types.Entity, values map[string]types.Value) (json.RawMessage, error) {
	obj := make(map[string]any, len(e.Attributes)+1)
	obj[RecordIDField] = id
	for _, a := range e.Attributes {
		obj[a.Name] = jsonValue(values[a.Name])
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %s: %w", e.Name, id, err)
	}
	return data, nil
}

// jsonValue maps a storage value onto JSON. Decimals and non-finite floats
// become strings so no precision is lost.
func jsonValue(v types.Value) any {
	switch v.Kind() {
	case types.KindNull:
		return nil
	case types.KindFloat:
		f, _ := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return f
	case types.KindDecimal:
		d, _ := v.Decimal()
		return d.String()
	case types.KindTime:
		t, _ := v.Time()
		return t.Format(time.RFC3339Nano)
	case types.KindURI, types.KindUUID:
		return v.String()
	}
	return v.Interface()
}
