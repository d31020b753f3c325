// Package cli implements the pantry command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	dsn       string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// logger is built by the root command before any subcommand runs.
var logger = zap.NewNop()

// NewRootCmd creates the top-level "pantry" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pantry",
		Short: "Encode structured documents into typed records",
		Long: "Pantry encodes JSON and YAML documents into the records of a typed\n" +
			"record store, matching fields against each entity's attribute schema.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(flags.verbose)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			logger = l
			sqlstore.SetLogger(l.Named("sqlstore"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: sqlite or postgres (overrides config.yaml)")
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "PostgreSQL connection string (overrides config.yaml)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newModelCmd())
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newExportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps an error onto the process exit code. Errors caused by the
// caller's input exit with exitUserError; everything else is a system error.
func exitCode(err error) int {
	var encErr *pantry.EncodingError
	switch {
	case errors.As(err, &encErr),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrEntityNotFound),
		errors.Is(err, types.ErrAttributeNotFound),
		errors.Is(err, types.ErrTypeMismatch),
		errors.Is(err, types.ErrValueRequired),
		errors.Is(err, types.ErrInvalidAttributeType),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, types.ErrDSNEmpty),
		errors.Is(err, errUsage):
		return exitUserError
	}
	return exitSysError
}

// errUsage marks invalid command-line input.
var errUsage = errors.New("usage")
