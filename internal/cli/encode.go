package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/document"
	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

type encodeOptions struct {
	format          string
	continueOnError bool
	strictNil       bool
	dryRun          bool
}

func newEncodeCmd() *cobra.Command {
	var opts encodeOptions
	cmd := &cobra.Command{
		Use:   "encode <entity> [file]",
		Short: "Encode JSON or YAML documents into records of an entity",
		Long: `Encode reads documents from a file, or from stdin when the file is
omitted or "-", and encodes each one into the record of the entity that
its identifying field names. Records are created when absent.

By default the whole batch is saved only when every document encodes.
With --continue-on-error failing documents are skipped, the rest are
saved together, and failures are reported at the end.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "input format: json or yaml (default: from file extension, json for stdin)")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "skip documents that fail to encode and save the rest")
	cmd.Flags().BoolVar(&opts.strictNil, "strict-nil", false, "reject null elements inside arrays")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "encode without saving")
	return cmd
}

func runEncode(cmd *cobra.Command, args []string, opts encodeOptions) error {
	source := "-"
	if len(args) == 2 {
		source = args[1]
	}
	fields, err := readDocuments(cmd.InOrStdin(), source, opts.format)
	if err != nil {
		return err
	}

	return withStore(func(_ settings, b *sqlstore.Backend) error {
		e, err := b.Entity(args[0])
		if err != nil {
			return err
		}

		policy := pantry.FailFast
		if opts.continueOnError {
			policy = pantry.ContinueOnError
		}
		enc := pantry.NewRecordEncoder(b,
			pantry.WithLogger(logger.Named("encoder")),
			pantry.WithStrictNil(opts.strictNil),
			pantry.WithBatchPolicy(policy),
			pantry.WithUserInfo(map[string]any{"source": source}),
		)

		records, err := encodeDocuments(b, enc, e, fields, opts.dryRun)

		out := cmd.OutOrStdout()
		if flags.jsonMode {
			if werr := writeRecords(out, records); werr != nil {
				return werr
			}
		} else {
			verb := "Encoded"
			if opts.dryRun {
				verb = "Encoded (dry run)"
			}
			fmt.Fprintf(out, "%s %d of %d documents into %s\n", verb, len(records), len(fields), e.Name)
		}
		return err
	})
}

// encodeDocuments encodes every document through one batch and saves once.
// Under the fail-fast policy any failure discards the whole batch. Under
// continue-on-error the failing documents are rolled back by the encoder
// and the rest are saved.
func encodeDocuments(b *sqlstore.Backend, enc *pantry.RecordEncoder, e types.Entity, fields []map[string]any, dryRun bool) ([]types.Record, error) {
	docs := make([]pantry.Codable, 0, len(fields))
	for _, f := range fields {
		doc, err := document.New(e, f)
		if err != nil {
			docs = append(docs, invalidDocument{err: err})
			continue
		}
		docs = append(docs, doc)
	}

	records, err := pantry.EncodeAll(enc, docs)
	if dryRun {
		b.Reset()
		return records, err
	}
	if err != nil && len(records) == 0 {
		b.Reset()
		return nil, err
	}
	if serr := b.Save(); serr != nil {
		b.Reset()
		return nil, errors.Join(err, fmt.Errorf("save: %w", serr))
	}
	return records, err
}

// invalidDocument stands in for a document that could not be read so that
// it fails in its place within the batch.
type invalidDocument struct {
	err error
}

func (d invalidDocument) RecordIdentifier() pantry.Identifier { return d }

func (d invalidDocument) FindOrCreate(types.Store) (types.Record, error) { return nil, d.err }

func (d invalidDocument) EncodeRecord(*pantry.Encoder) error { return d.err }

// readDocuments decodes the documents in source ("-" for stdin).
func readDocuments(stdin io.Reader, source, format string) ([]map[string]any, error) {
	r := stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(source)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}
	switch format {
	case "json":
		return document.ReadJSON(r)
	case "yaml":
		return document.ReadYAML(r)
	}
	return nil, fmt.Errorf("%w: unknown format %q", errUsage, format)
}
