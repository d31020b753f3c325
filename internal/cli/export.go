package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/internal/sqlstore"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write every entity's records to JSONL files",
		Long: `Export writes one <entity>.jsonl file per entity into dir, which
defaults to the export directory inside the data directory. Each line is
one saved record.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s settings, b *sqlstore.Backend) error {
				dir := paths.ExportDir(s.store.DataDir)
				if len(args) == 1 {
					dir = args[0]
				}
				counts, err := b.Export(dir)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"dir": dir, "records": counts})
				}

				names := make([]string, 0, len(counts))
				for name := range counts {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", name, counts[name])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", dir)
				return nil
			})
		},
	}
}
