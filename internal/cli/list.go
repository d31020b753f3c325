package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/sqlstore"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <entity>",
		Short: "List the records of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(_ settings, b *sqlstore.Backend) error {
				e, err := b.Entity(args[0])
				if err != nil {
					return err
				}
				records, err := b.Records(e.Name)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeRecords(cmd.OutOrStdout(), records)
				}
				return writeRecordSummary(cmd.OutOrStdout(), e, records)
			})
		},
	}
}
