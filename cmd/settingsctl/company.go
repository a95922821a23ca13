package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"invoicedesk/internal/common"
	"invoicedesk/internal/models"
)

var errNoDatabase = errors.New("company records need the database")

func companyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage company records",
	}

	var prefix string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a company record",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			companies := e.container.GetCompanies()
			if companies == nil {
				return errNoDatabase
			}
			company := &models.Company{
				ID:            common.GenerateUUID(),
				Name:          args[0],
				InvoicePrefix: prefix,
			}
			if err := companies.SaveCompany(cmd.Context(), company); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), company.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&prefix, "prefix", "", "invoice prefix (company initials)")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List company records",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			companies := e.container.GetCompanies()
			if companies == nil {
				return errNoDatabase
			}
			list, err := companies.ListCompanies(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No companies found.")
				return nil
			}
			for _, c := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %s\n", c.ID, c.InvoicePrefix, c.Name)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-prefix <company-id> <prefix>",
		Short: "Set a company's invoice prefix",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if err := e.container.GetConfigurationService().SetCompanyInitials(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set prefix for %s\n", args[0])
			return nil
		}),
	})

	return cmd
}
