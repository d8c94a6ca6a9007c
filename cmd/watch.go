package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/monitor"
)

var (
	watchMode     string
	watchRules    string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and scan, suggest or fix files as they change",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		cfg, err := loadConfig(watchRules)
		if err != nil {
			return err
		}
		if watchMode != "" {
			cfg.AgentMode = watchMode
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		ctx, cancel := signalContext()
		defer cancel()
		a, err := newAnalyzer(ctx, cfg, cfg.AgentMode != config.ModeMonitor)
		if err != nil {
			return err
		}
		defer a.Fixes().Close()

		w, err := monitor.New(root, a, monitor.NewActivityLog(monitor.DefaultActivityLimit), monitor.Options{
			Mode:     cfg.AgentMode,
			Filter:   analysis.Filter{ExcludedFiles: cfg.ExcludedFiles, ExcludedExtensions: cfg.ExcludedExtensions},
			Debounce: watchDebounce,
		})
		if err != nil {
			return err
		}
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMode, "mode", "", "Agent mode: monitor, suggest or autofix (default from config)")
	watchCmd.Flags().StringVar(&watchRules, "rules", "", "Directory of custom pattern YAML files")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Wait this long for more changes before scanning")
	rootCmd.AddCommand(watchCmd)
}
