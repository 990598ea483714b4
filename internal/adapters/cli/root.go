package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var verboseFlag bool

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "call2insights",
		Short: "Analyze call transcripts for compliance root causes",
		Long: `call2insights batch-analyzes call transcripts with the Gemini API.

Each transcript (optionally with an auditor comment and error code) is
classified against a fixed set of root-cause themes, with reasoning and
an empathy score, and the results are exported back to CSV alongside
the original columns.

Set GEMINI_API_KEY (or GOOGLE_API_KEY) before running an analysis.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
