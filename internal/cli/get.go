package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/document"
	"github.com/mesh-intelligence/pantry/internal/sqlstore"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <key>",
		Short: "Print the record whose identifier equals key",
		Long: `Get looks up a record by the value of its entity's identifying
attribute. The key is converted to the attribute's declared type.

Example:
  pantry get Counter abc`,
		Args: cobra.ExactArgs(2),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	return withStore(func(_ settings, b *sqlstore.Backend) error {
		e, err := b.Entity(args[0])
		if err != nil {
			return err
		}
		doc, err := document.New(e, map[string]any{e.Identifier: args[1]})
		if err != nil {
			return fmt.Errorf("key: %w", err)
		}
		record, err := b.FetchOne(e.Name, e.Identifier, doc.Key())
		if err != nil {
			return fmt.Errorf("%s %s=%s: %w", e.Name, e.Identifier, args[1], err)
		}

		data, err := sqlstore.MarshalRecord(record)
		if err != nil {
			return err
		}
		if !flags.jsonMode {
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", "  "); err != nil {
				return err
			}
			data = buf.Bytes()
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return err
	})
}
