package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/app"
	"github.com/tripdesk/backoffice/internal/service/importer"
)

type importOptions struct {
	entity    importer.Entity
	file      string
	json      bool
	maxErrors int
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <vendors|tags|location-tags>",
		Short: "Import a CSV file into a catalogue",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			entity, err := importer.ParseEntity(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			opts.entity = entity
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services, _ *slog.Logger) error {
				return runImport(ctx, svcs.Importer, opts, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file to import, - for stdin (required)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the full result as JSON")
	cmd.Flags().IntVar(&opts.maxErrors, "max-errors", 20, "Errors to list in the text summary (0 = all)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type csvImporter interface {
	ImportCSV(ctx context.Context, entity importer.Entity, r io.Reader) *importer.Result
}

func runImport(ctx context.Context, svc csvImporter, opts importOptions, out io.Writer) error {
	in, closeFn, err := openInput(opts.file)
	if err != nil {
		return withCode(exitUsage, err)
	}
	defer closeFn()

	res := svc.ImportCSV(ctx, opts.entity, in)

	if opts.json {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		printResult(out, res, opts.maxErrors)
	}

	if res.HasErrors() {
		return withCode(exitPartial, fmt.Errorf("%s", res.Summary()))
	}
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// printResult writes the summary and up to limit errors, one per line.
func printResult(w io.Writer, res *importer.Result, limit int) {
	fmt.Fprintln(w, res.Summary())

	errs := res.Errors
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	for _, e := range errs {
		fmt.Fprintf(w, "  %s [%s] %s\n", errorLocation(e), e.Kind, e.Message)
	}
	if hidden := len(res.Errors) - len(errs); hidden > 0 {
		fmt.Fprintf(w, "  ... and %d more (use --json for the full list)\n", hidden)
	}
}

func errorLocation(e importer.ImportError) string {
	switch {
	case e.Row > 0:
		return fmt.Sprintf("row %d:", e.Row)
	case e.Batch > 0:
		return fmt.Sprintf("batch %d (%d rows):", e.Batch, e.Rows)
	}
	return "file:"
}
