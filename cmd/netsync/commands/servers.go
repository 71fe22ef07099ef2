package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// NewServersCommand creates the servers command group.
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage backend servers",
	}

	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersTestCommand())

	return cmd
}

func newServersListCommand() *cobra.Command {
	var (
		refresh    bool
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backend servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			opts := &netsync.GetOptions{ForceRefresh: refresh}
			if activeOnly {
				opts.Params = netsync.NewQueryParams().WithIsActive(true)
			}

			result, err := client.Clients().ListServers(context.Background(), opts)
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Address", "Type", "Status", "Healthy")

			for _, server := range result.Data {
				_ = table.Append(server.Name, server.Address, server.ServerType, server.Status, boolLabel(server.Healthy))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\n%d servers (%d active, %d healthy)\n",
				result.Metadata.Total, result.Metadata.ActiveCount, result.Metadata.HealthyCount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active servers")

	return cmd
}

func newServersTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test SERVER_ID",
		Short: "Run a connectivity test against a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Clients().TestServer(context.Background(), args[0])
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			passed := result.Metadata.TestPassed != nil && *result.Metadata.TestPassed

			if passed {
				_, _ = fmt.Fprintf(os.Stdout, "Server '%s' passed the connectivity test\n", result.Data.Name)
			} else {
				_, _ = fmt.Fprintf(os.Stdout, "Server '%s' failed the connectivity test\n", result.Data.Name)
			}

			return nil
		},
	}
}
