package cmd

import (
	"cxbot/internal/bot"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connects the bot to Discord and starts the keep-alive server",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func run(cmd *cobra.Command, _ []string) error {
	return bot.Run(cmd.Context(), opts)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
