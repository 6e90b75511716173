package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/boardpulse/boardpulse/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  ____                      _ ____        _\n" +
		" | __ )  ___   __ _ _ __ __| |  _ \\ _   _| |___  ___\n" +
		" |  _ \\ / _ \\ / _` | '__/ _` | |_) | | | | / __|/ _ \\\n" +
		" | |_) | (_) | (_| | | | (_| |  __/| |_| | \\__ \\  __/\n" +
		" |____/ \\___/ \\__,_|_|  \\__,_|_|    \\__,_|_|___/\\___|\n"
)

var rootCmd = &cobra.Command{
	Use:   "boardpulse",
	Short: "BoardPulse - live board activity in your terminal",
	Long:  color.CyanString(logo) + "\nA resilient live feed for multi-agent task boards.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(postCmd)
}
