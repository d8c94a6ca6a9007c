package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/report"
)

var (
	scanFormat   string
	scanOutput   string
	scanRules    string
	scanMaxFiles int
	scanFailOn   string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a file or directory and print a report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}

		renderer, err := report.New(scanFormat, Version)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(scanRules)
		if err != nil {
			return err
		}
		if scanMaxFiles > 0 {
			cfg.MaxFilesToAnalyze = scanMaxFiles
		}

		ctx, cancel := signalContext()
		defer cancel()
		a, err := newAnalyzer(ctx, cfg, false)
		if err != nil {
			return err
		}

		var in report.Input
		if isDir(target) {
			res, err := a.AnalyzeRepository(ctx, target, cfg, false)
			if err != nil {
				return err
			}
			in = report.FromRepository(res)
		} else {
			data, err := os.ReadFile(target)
			if err != nil {
				return err
			}
			issues := a.Scan(string(data), analysis.Extension(target))
			engine.SortBySeverity(issues)
			in = report.FromIssues(target, issues)
		}

		var out io.Writer = cmd.OutOrStdout()
		if scanOutput != "" {
			f, err := os.Create(scanOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := renderer.Render(out, in); err != nil {
			return err
		}
		return failOn(in, scanFailOn)
	},
}

// failOn returns an error when any issue is at least as severe as threshold.
func failOn(in report.Input, threshold string) error {
	if threshold == "" {
		return nil
	}
	sev := engine.Severity(strings.ToUpper(threshold))
	if !sev.Valid() {
		return fmt.Errorf("invalid --fail-on severity %q", threshold)
	}
	for _, f := range in.Files {
		for _, is := range f.Issues {
			if is.Severity.Rank() <= sev.Rank() {
				return fmt.Errorf("found %s issue at or above %s: %s:%d %s", is.Severity, sev, f.Path, is.Line, is.Message)
			}
		}
	}
	return nil
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json, sarif)")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Write the report to a file")
	scanCmd.Flags().StringVar(&scanRules, "rules", "", "Directory of custom pattern YAML files")
	scanCmd.Flags().IntVar(&scanMaxFiles, "max-files", 0, "Override max_files_to_analyze for directory scans")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "Exit non-zero when an issue of this severity or worse is found")
	rootCmd.AddCommand(scanCmd)
}
