// Package cli implements the meetdigest command line.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// newRootCmd builds the command tree. Each call returns fresh commands with
// their own flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meetdigest",
		Short: "Summarize meeting transcripts of any length",
		Long: `meetdigest turns meeting transcripts (.json, .srt, .txt) into markdown digests.
Transcripts larger than the model's context window are split into chunks,
summarized in order and merged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		newAnalyzeCmd(),
		newSummarizeCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
