package commands

import (
	"context"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// NewOverviewCommand creates the overview command.
func NewOverviewCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show the aggregated dashboard overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			view, err := client.Views().Overview(context.Background(), &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(view); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Metric", "Value")
			_ = table.Append("Servers", strconv.Itoa(view.TotalServers))
			_ = table.Append("Healthy servers", strconv.Itoa(view.HealthyServers))
			_ = table.Append("Projects", strconv.Itoa(view.TotalProjects))
			_ = table.Append("Open projects", strconv.Itoa(view.OpenProjects))
			_ = table.Append("Active policies", strconv.Itoa(view.ActivePolicies))
			_ = table.Append("Devices", strconv.Itoa(view.TotalDevices))
			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}
