package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// NewClientsCommand creates the clients command group.
func NewClientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage registered API clients",
	}

	cmd.AddCommand(newClientsListCommand())
	cmd.AddCommand(newClientsRegisterCommand())

	return cmd
}

func newClientsListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered API clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Clients().List(context.Background(), &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Base URL", "Type", "Active")

			for _, item := range result.Data {
				_ = table.Append(item.Name, item.BaseURL, item.ClientType, boolLabel(item.IsActive))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\n%d clients (%d active)\n", result.Metadata.Total, result.Metadata.ActiveCount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}

func newClientsRegisterCommand() *cobra.Command {
	var (
		name       string
		baseURL    string
		clientType string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new API client",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Clients().Register(context.Background(), &netsync.ClientRegistration{
				Name:       name,
				BaseURL:    baseURL,
				ClientType: clientType,
			})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Registered client '%s' (%s)\n", result.Data.Name, result.Data.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "client name (required)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "client base URL (required)")
	cmd.Flags().StringVar(&clientType, "type", "", "client type")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("base-url")

	return cmd
}
