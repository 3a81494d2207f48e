package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/unitcache/internal/app"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [units...]",
		Short: "Load units through the cache (all declared units when none are given)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Load(cmd.Context(), args, app.LoadOptions{
				Options: globalOptions(cmd),
				Force:   force,
				Jobs:    jobs,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Bypass every cache tier and reload")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent loads (default: throttle from config, then CPU count)")
	return cmd
}
