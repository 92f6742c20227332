package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/adapter/functions"
	"github.com/tripdesk/backoffice/internal/adapter/postgres"
	"github.com/tripdesk/backoffice/internal/adapter/postgres/vendor"
	"github.com/tripdesk/backoffice/internal/domain"
)

func newVendorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Vendor maintenance",
	}
	cmd.AddCommand(newVendorRecalcRatingCmd())
	return cmd
}

func newVendorRecalcRatingCmd() *cobra.Command {
	var (
		vendorID string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "recalc-rating",
		Short: "Recalculate a vendor's rating from its reviews",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if (vendorID == "") == (name == "") {
				return withCode(exitUsage, errors.New("exactly one of --vendor-id or --name is required"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := functions.NewClient(cfg.Functions, logger)
			if err != nil {
				return withCode(exitUsage, err)
			}

			var id uuid.UUID
			if vendorID != "" {
				id, err = uuid.Parse(strings.TrimSpace(vendorID))
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("invalid --vendor-id: %w", err))
				}
			} else {
				pool, err := postgres.NewPool(ctx, cfg.Database)
				if err != nil {
					return withCode(exitDB, err)
				}
				defer pool.Close()

				id, err = vendor.New(pool).FindIDByName(ctx, name)
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return withCode(exitUsage, err)
					}
					return withCode(exitDB, err)
				}
			}

			rating, err := client.RecalculateVendorRating(ctx, id)
			if err != nil {
				return withCode(exitRemote, err)
			}

			if rating == "" {
				rating = "no reviews"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vendor %s rating: %s\n", id, rating)
			return nil
		},
	}

	cmd.Flags().StringVar(&vendorID, "vendor-id", "", "Vendor UUID")
	cmd.Flags().StringVar(&name, "name", "", "Vendor name (case-insensitive)")

	return cmd
}
