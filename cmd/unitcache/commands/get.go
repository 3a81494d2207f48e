package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <unit>",
		Short: "Show whether a unit is cached and still valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Get(cmd.Context(), args[0], globalOptions(cmd))
		},
	}
}
