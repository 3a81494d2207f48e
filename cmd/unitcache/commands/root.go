// Package commands implements the CLI commands for unitcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/unitcache/internal/app"
	"go.trai.ch/unitcache/internal/build"
)

// CLI represents the command line interface for unitcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Load(ctx context.Context, names []string, opts app.LoadOptions) error
	Watch(ctx context.Context, names []string, opts app.LoadOptions) error
	Get(ctx context.Context, name string, opts app.Options) error
	Stats(ctx context.Context, opts app.Options) error
	Clean(ctx context.Context, opts app.Options) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "unitcache",
		Short:         "Load units once and serve them from a validated cache",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to unitcache.yaml (default: discovered from the working directory)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory (default: $UNITCACHE_CACHE_DIR or the user cache directory)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().Bool("debug-log", false, "Write a rotating debug log inside the cache directory")
	rootCmd.PersistentFlags().StringP("output", "o", "auto", "Progress output: auto, progress, quiet, or tui")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newLoadCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newStatsCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func globalOptions(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	debugLog, _ := cmd.Flags().GetBool("debug-log")
	output, _ := cmd.Flags().GetString("output")
	return app.Options{
		ConfigPath: configPath,
		CacheDir:   cacheDir,
		JSONLog:    jsonLog,
		DebugLog:   debugLog,
		Output:     output,
	}
}
