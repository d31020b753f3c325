package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReadJSON decodes a stream of JSON values. Each value is either an object
// or an array of objects; numbers are kept as json.Number so integers keep
// full precision.
func ReadJSON(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var docs []map[string]any
	for i := 0; ; i++ {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode JSON value %d: %w", i, err)
		}
		docs, err = appendDocs(docs, v)
		if err != nil {
			return nil, fmt.Errorf("JSON value %d: %w", i, err)
		}
	}
}

// ReadYAML decodes a stream of YAML documents, each an object or a list of
// objects.
func ReadYAML(r io.Reader) ([]map[string]any, error) {
	dec := yaml.NewDecoder(r)

	var docs []map[string]any
	for i := 0; ; i++ {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode YAML document %d: %w", i, err)
		}
		if v == nil {
			continue
		}
		docs, err = appendDocs(docs, v)
		if err != nil {
			return nil, fmt.Errorf("YAML document %d: %w", i, err)
		}
	}
}

func appendDocs(docs []map[string]any, v any) ([]map[string]any, error) {
	switch x := v.(type) {
	case map[string]any:
		return append(docs, x), nil
	case []any:
		for j, elem := range x {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want object", j, elem)
			}
			docs = append(docs, m)
		}
		return docs, nil
	}
	return nil, fmt.Errorf("got %T, want object or array of objects", v)
}
