package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/model"
	"github.com/mesh-intelligence/pantry/internal/sqlstore"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage entity schemas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "apply <file>",
		Short: "Create or replace the entities declared in a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelApply,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the entities defined in the store",
		Args:  cobra.NoArgs,
		RunE:  runModelShow,
	})
	return cmd
}

func runModelApply(cmd *cobra.Command, args []string) error {
	entities, err := model.Load(args[0])
	if err != nil {
		return err
	}
	return withStore(func(_ settings, b *sqlstore.Backend) error {
		for _, e := range entities {
			if err := b.DefineEntity(e); err != nil {
				return fmt.Errorf("define %s: %w", e.Name, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d entities\n", len(entities))
		return nil
	})
}

func runModelShow(cmd *cobra.Command, args []string) error {
	return withStore(func(_ settings, b *sqlstore.Backend) error {
		entities, err := b.Entities()
		if err != nil {
			return err
		}
		data, err := model.Marshal(entities)
		if err != nil {
			return err
		}
		if flags.jsonMode {
			// Round-trip through the model form so JSON uses type names.
			var doc map[string]any
			if err := yamlToMap(data, &doc); err != nil {
				return err
			}
			data, err = json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	})
}
