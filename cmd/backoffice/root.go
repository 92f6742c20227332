package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/app"
	"github.com/tripdesk/backoffice/internal/config"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Travel back-office operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String(configFlag, "", "Path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newAgentCmd())
	cmd.AddCommand(newVendorCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion())
			return err
		},
	}
}

// loadConfig reads config and builds the logger. CLI logs go to stderr so
// stdout stays clean for exported files and JSON.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path := os.Getenv("CONFIG_PATH")
	if f := cmd.Flag(configFlag); f != nil && f.Value.String() != "" {
		path = f.Value.String()
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	return cfg, app.NewLogger(cfg.Log), nil
}

// withServices loads config, connects to the database and runs fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svcs *app.Services, logger *slog.Logger) error) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svcs, err := app.NewServices(ctx, cfg, logger)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer svcs.Close()

	return fn(ctx, svcs, logger)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
