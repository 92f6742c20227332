package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tripdesk/backoffice/internal/adapter/functions"
	"github.com/tripdesk/backoffice/internal/domain"
)

// agentPasswordEnv keeps the initial password out of shell history.
const agentPasswordEnv = "BACKOFFICE_AGENT_PASSWORD"

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent accounts",
	}
	cmd.AddCommand(newAgentCreateCmd())
	return cmd
}

func newAgentCreateCmd() *cobra.Command {
	var (
		in   functions.CreateAgentInput
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision an agent account through the create-agent function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = domain.Role(strings.ToLower(role))
			if in.Password == "" {
				in.Password = os.Getenv(agentPasswordEnv)
			}

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := functions.NewClient(cfg.Functions, logger)
			if err != nil {
				return withCode(exitUsage, err)
			}

			agent, err := client.CreateAgent(cmd.Context(), in)
			if err != nil {
				if errors.Is(err, domain.ErrValidation) {
					return withCode(exitUsage, err)
				}
				return withCode(exitRemote, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s <%s> id=%s role=%s\n",
				agent.FirstName, agent.LastName, agent.Email, agent.ID, agent.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Agent email (required)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAgent), "Role: agent or admin")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password (default: $"+agentPasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}
