package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cxbot/internal/config"

	"github.com/spf13/cobra"
)

var opts config.Options

var rootCmd = &cobra.Command{
	Use:           "cxbot",
	Short:         "CX economy bot for Discord",
	Long:          "cxbot connects to Discord and serves the CX economy bot. Without a subcommand it behaves like run.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.EnvFile, "env-file", "", "path to a .env file (default .env)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "directory holding the JSON data files (overrides DATA_DIR)")
	flags.StringVar(&opts.CogsDir, "cogs-dir", "", "directory holding cog configs (overrides COGS_DIR)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
