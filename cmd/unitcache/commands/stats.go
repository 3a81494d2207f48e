package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Stats(cmd.Context(), globalOptions(cmd))
		},
	}
}
