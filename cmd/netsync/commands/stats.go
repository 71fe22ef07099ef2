package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show transport and cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			stats := client.GetStats()

			if done, err := renderStructured(stats); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Module", "Hits", "Misses", "Sets", "Hit rate")

			for _, module := range sortedModules(stats.Caches) {
				cache := stats.Caches[module]
				_ = table.Append(string(module),
					strconv.FormatInt(cache.Hits, 10),
					strconv.FormatInt(cache.Misses, 10),
					strconv.FormatInt(cache.Sets, 10),
					fmt.Sprintf("%.0f%%", cache.GetHitRate()*100))
			}

			_ = table.Render()

			_, _ = fmt.Fprintf(os.Stdout, "\nTransport: %d requests, %d errors, %d retries\n",
				stats.Transport.Requests, stats.Transport.Errors, stats.Transport.Retries)

			return nil
		},
	}
}
