package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// NewPoliciesCommand creates the policies command group.
func NewPoliciesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage QoS policies",
	}

	cmd.AddCommand(newPoliciesListCommand())
	cmd.AddCommand(newPoliciesCreateCommand())
	cmd.AddCommand(newPoliciesApplyCommand())

	return cmd
}

func newPoliciesListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List QoS policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.QoS().List(context.Background(), &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Direction", "Bandwidth (kbps)", "Priority", "Active")

			for _, policy := range result.Data {
				_ = table.Append(policy.Name, policy.Direction,
					strconv.Itoa(policy.BandwidthKbps), strconv.Itoa(policy.Priority), boolLabel(policy.IsActive))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\n%d policies (%d active)\n", result.Metadata.Total, result.Metadata.ActiveCount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}

func newPoliciesCreateCommand() *cobra.Command {
	var (
		name      string
		direction string
		bandwidth int
		priority  int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a QoS policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.QoS().Create(context.Background(), &netsync.PolicyCreate{
				Name:          name,
				Direction:     direction,
				BandwidthKbps: bandwidth,
				Priority:      priority,
			})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created policy '%s' (%s)\n", result.Data.Name, result.Data.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "policy name (required)")
	cmd.Flags().StringVar(&direction, "direction", "", "traffic direction (required)")
	cmd.Flags().IntVar(&bandwidth, "bandwidth", 0, "bandwidth limit in kbps (required)")
	cmd.Flags().IntVar(&priority, "priority", 0, "policy priority")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.MarkFlagRequired("bandwidth")

	return cmd
}

func newPoliciesApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply POLICY_ID",
		Short: "Apply a policy to the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.QoS().Apply(context.Background(), args[0])
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Applied policy '%s' to %d interfaces\n",
				result.Data.Name, result.Metadata.AffectedCount)

			return nil
		},
	}
}
