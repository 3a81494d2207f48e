package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/unitcache/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [units...]",
		Short: "Load units, then reload each one when its source changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Watch(cmd.Context(), args, app.LoadOptions{
				Options: globalOptions(cmd),
				Jobs:    jobs,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent loads (default: throttle from config, then CPU count)")
	return cmd
}
