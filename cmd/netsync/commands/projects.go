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

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage GNS3 emulation projects",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsCreateCommand())
	cmd.AddCommand(newProjectsStartCommand())
	cmd.AddCommand(newProjectsStopCommand())
	cmd.AddCommand(newProjectsNodesCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List emulation projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Projects().List(context.Background(), &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "ID", "Status", "Nodes")

			for _, project := range result.Data {
				_ = table.Append(project.Name, project.ID, project.Status, strconv.Itoa(project.NodeCount))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\n%d projects (%d open)\n", result.Metadata.Total, result.Metadata.ActiveCount)

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}

func newProjectsCreateCommand() *cobra.Command {
	var (
		name     string
		serverID string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an emulation project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Projects().Create(context.Background(), &netsync.ProjectCreate{
				Name:     name,
				ServerID: serverID,
			})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Created project '%s' (%s)\n", result.Data.Name, result.Data.ID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "project name (required)")
	cmd.Flags().StringVar(&serverID, "server", "", "server to host the project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectsStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start PROJECT_ID",
		Short: "Open a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Projects().Start(context.Background(), args[0])
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Project '%s' is now %s\n", result.Data.Name, result.Data.Status)

			return nil
		},
	}
}

func newProjectsStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop PROJECT_ID",
		Short: "Close a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Projects().Stop(context.Background(), args[0])
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Project '%s' is now %s\n", result.Data.Name, result.Data.Status)

			return nil
		},
	}
}

func newProjectsNodesCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "nodes PROJECT_ID",
		Short: "List the nodes of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			result, err := client.Projects().ListNodes(context.Background(), args[0], &netsync.GetOptions{ForceRefresh: refresh})
			if err != nil {
				return err
			}

			if done, err := renderStructured(result); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Type", "Status", "Console")

			for _, node := range result.Data {
				console := ""
				if node.ConsoleHost != "" {
					console = fmt.Sprintf("%s:%d", node.ConsoleHost, node.ConsolePort)
				}

				_ = table.Append(node.Name, node.NodeType, node.Status, console)
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the read cache")

	return cmd
}
