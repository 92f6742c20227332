package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/auth"
	"github.com/tripdesk/backoffice/internal/domain"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access tokens for service accounts",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for scripts calling the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(userID))
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --user-id: %w", err))
			}
			r := domain.Role(strings.ToLower(role))
			if !r.IsValid() {
				return withCode(exitUsage, fmt.Errorf("invalid --role %q (want admin or agent)", role))
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			token, err := auth.NewVerifier(cfg.Auth).Issue(auth.Identity{UserID: id, Email: email, Role: r})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Subject user UUID (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAgent), "Role: agent or admin")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
