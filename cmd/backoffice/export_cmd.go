package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/app"
	"github.com/tripdesk/backoffice/internal/service/exporter"
	"github.com/tripdesk/backoffice/internal/service/importer"
)

type exportOptions struct {
	entity   importer.Entity
	format   exporter.Format
	out      string
	template bool
}

func newExportCmd() *cobra.Command {
	var (
		opts   exportOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "export <vendors|tags|location-tags>",
		Short: "Export a catalogue as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			entity, err := importer.ParseEntity(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if f == exporter.FormatXLSX && opts.out == "" {
				return withCode(exitUsage, fmt.Errorf("--out is required for xlsx"))
			}
			opts.entity, opts.format = entity, f
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *app.Services, logger *slog.Logger) error {
				return runExport(ctx, svcs.Exporter, opts, cmd.OutOrStdout(), logger)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or xlsx")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file (default: stdout, csv only)")
	cmd.Flags().BoolVar(&opts.template, "template", false, "Write only the header row")

	return cmd
}

type fileExporter interface {
	Export(ctx context.Context, entity importer.Entity, format exporter.Format, w io.Writer) (int, error)
	Template(entity importer.Entity, format exporter.Format, w io.Writer) error
}

func runExport(ctx context.Context, svc fileExporter, opts exportOptions, stdout io.Writer, logger *slog.Logger) error {
	w, commit, err := openOutput(opts.out, stdout)
	if err != nil {
		return withCode(exitUsage, err)
	}

	var rows int
	if opts.template {
		err = svc.Template(opts.entity, opts.format, w)
	} else {
		rows, err = svc.Export(ctx, opts.entity, opts.format, w)
	}
	if cerr := commit(err == nil); err == nil {
		err = cerr
	}
	if err != nil {
		return withCode(exitDB, err)
	}

	if opts.out != "" {
		logger.Info("export complete",
			slog.String("entity", opts.entity.String()),
			slog.String("file", opts.out),
			slog.Int("rows", rows),
		)
	}
	return nil
}

// openOutput returns a writer for path, or stdout when path is empty.
// commit(false) removes a partially written file.
func openOutput(path string, stdout io.Writer) (io.Writer, func(ok bool) error, error) {
	if path == "" {
		return stdout, func(bool) error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func(ok bool) error {
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		if !ok {
			os.Remove(path) //nolint:errcheck
		}
		return nil
	}, nil
}
