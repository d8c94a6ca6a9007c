package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/metrics"
)

var (
	fixWrite   bool
	fixNoAI    bool
	fixEnvFile string
	fixRules   string
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Generate fixes for a file and optionally apply them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(fixRules)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		a, err := newAnalyzer(ctx, cfg, !fixNoAI)
		if err != nil {
			return err
		}
		defer a.Fixes().Close()

		code, ext := string(data), analysis.Extension(path)
		issues := a.Scan(code, ext)
		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintln(out, "No issues found.")
			return nil
		}

		fixes := a.Fixes().GenerateFixes(ctx, issues, code, ext)
		for i, f := range fixes {
			fmt.Fprintf(out, "[%s] %s:%d %s (%s, %s confidence)\n",
				issues[i].Severity, path, f.Line, issues[i].Message, f.FixType, f.Confidence)
			fmt.Fprintf(out, "  - %s\n", f.OriginalCode)
			if f.FixedCode != "" {
				fmt.Fprintf(out, "  + %s\n", f.FixedCode)
			}
			if f.Explanation != "" {
				fmt.Fprintf(out, "    %s\n", f.Explanation)
			}
		}

		if !fixWrite {
			fmt.Fprintf(out, "\n%d fixes generated. Re-run with --write to apply them.\n", len(fixes))
			return nil
		}

		fixed, applied, envVars := engine.ApplyFixes(code, fixes)
		if applied > 0 {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(fixed), info.Mode().Perm()); err != nil {
				return err
			}
			metrics.FixesApplied.Add(float64(applied))
		}
		fmt.Fprintf(out, "\nApplied %d of %d fixes to %s\n", applied, len(fixes), path)

		if len(envVars) > 0 {
			envPath := fixEnvFile
			if envPath == "" {
				envPath = filepath.Join(filepath.Dir(path), ".env.example")
			}
			if err := os.WriteFile(envPath, []byte(engine.BuildEnvTemplate(envVars)), 0644); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %s with %d variables\n", envPath, len(envVars))
		}
		return nil
	},
}

func init() {
	fixCmd.Flags().BoolVarP(&fixWrite, "write", "w", false, "Apply fixes to the file in place")
	fixCmd.Flags().BoolVar(&fixNoAI, "no-ai", false, "Use rule-based fixes even when a provider is configured")
	fixCmd.Flags().StringVar(&fixEnvFile, "env-file", "", "Where to write the env template (default: .env.example next to the file)")
	fixCmd.Flags().StringVar(&fixRules, "rules", "", "Directory of custom pattern YAML files")
	rootCmd.AddCommand(fixCmd)
}
