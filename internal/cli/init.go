package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry storage",
		Long:  "Create the configuration directory and config.yaml, then create the store schema.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s settings, b *sqlstore.Backend) error {
				entities, err := b.Entities()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Pantry initialized\nconfig: %s\nbackend: %s\n", s.configDir, s.store.Backend)
				if s.store.Backend == types.BackendSQLite {
					fmt.Fprintf(out, "data: %s\n", s.store.DataDir)
				}
				fmt.Fprintf(out, "entities: %d\n", len(entities))
				return nil
			})
		},
	}
}
