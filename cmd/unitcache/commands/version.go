package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/unitcache/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if short, _ := cmd.Flags().GetBool("short"); short {
				_, err := fmt.Fprintln(out, build.Version)
				return err
			}
			_, err := fmt.Fprintf(out, "unitcache version %s (commit: %s, date: %s)\n",
				build.Version, build.Commit, build.Date)
			return err
		},
	}
	cmd.Flags().Bool("short", false, "Print only the version number")
	return cmd
}
