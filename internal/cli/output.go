package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// writeRecords prints records as JSON lines.
func writeRecords(w io.Writer, records []types.Record) error {
	for _, r := range records {
		data, err := sqlstore.MarshalRecord(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// writeRecordSummary prints one line per record: the ID and identifier.
func writeRecordSummary(w io.Writer, e types.Entity, records []types.Record) error {
	for _, r := range records {
		key, err := r.Value(e.Identifier)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\t%s=%s\n", r.ID(), e.Identifier, key); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func yamlToMap(data []byte, out *map[string]any) error {
	return yaml.Unmarshal(data, out)
}
