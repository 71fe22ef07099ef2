package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// NewEquipmentCommand creates the equipment command group.
func NewEquipmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equipment",
		Short: "Manage the equipment inventory",
	}

	cmd.AddCommand(newEquipmentListCommand())
	cmd.AddCommand(newEquipmentDiscoverCommand())

	return cmd
}

func newEquipmentListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List network equipment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Equipment().List(context.Background(), &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Address", "Vendor", "Type", "Status", "Healthy")

			for _, device := range result.Data {
				_ = table.Append(device.Name, device.Address, device.Vendor,
					device.DeviceType, device.Status, boolLabel(device.Healthy))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\n%d devices (%d healthy)\n", result.Metadata.Total, result.Metadata.HealthyCount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}

func newEquipmentDiscoverCommand() *cobra.Command {
	var subnet string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run a discovery scan over a subnet",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Equipment().Discover(context.Background(), &netsync.DiscoveryRequest{
				Subnet: subnet,
			})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Discovery on %s found %d devices (%d new)\n",
				result.Data.Subnet, result.Data.DevicesFound, result.Data.DevicesNew)

			return nil
		},
	}

	cmd.Flags().StringVar(&subnet, "subnet", "", "subnet to scan, CIDR notation (required)")
	_ = cmd.MarkFlagRequired("subnet")

	return cmd
}
