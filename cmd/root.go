package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/logging"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gosec-autofix",
	Short: "Pattern-based code scanner with AI-assisted fixes",
	Long: `gosec-autofix scans source code for hardcoded secrets, debug statements,
quality and performance problems, scores the result, and generates fixes
using a language model when one is configured, or built-in rules otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(DebugMode)
	},
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer logging.Sync()
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
}
