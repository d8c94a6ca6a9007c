package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/engine"
)

var (
	baselineFile     string
	baselineLimit    int
	baselineMaxFiles int
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Save scan results and compare later scans against them",
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save [dir]",
	Short: "Scan a directory and save the findings as the baseline",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := scanBaseline(args)
		if err != nil {
			return err
		}
		if err := current.Save(baselineFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d findings to %s\n", current.Len(), baselineFile)
		return nil
	},
}

var baselineDiffCmd = &cobra.Command{
	Use:   "diff [dir]",
	Short: "Compare a fresh scan against the saved baseline",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := engine.LoadBaseline(baselineFile)
		if errors.Is(err, engine.ErrNoSnapshot) {
			return fmt.Errorf("no baseline at %s, run 'gosec-autofix baseline save' first", baselineFile)
		}
		if err != nil {
			return err
		}
		current, err := scanBaseline(args)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), current.Compare(saved).Report(baselineLimit))
		return nil
	},
}

func scanBaseline(args []string) (*engine.Baseline, error) {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	cfg, err := loadConfig("")
	if err != nil {
		return nil, err
	}
	if baselineMaxFiles > 0 {
		cfg.MaxFilesToAnalyze = baselineMaxFiles
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := newAnalyzer(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	res, err := a.AnalyzeRepository(ctx, root, cfg, false)
	if err != nil {
		return nil, err
	}

	b := engine.NewBaseline()
	for _, fr := range res.FileResults {
		b.Add(fr.Filename, fr.Issues)
	}
	return b, nil
}

func init() {
	baselineCmd.PersistentFlags().StringVar(&baselineFile, "file", engine.DefaultBaselinePath, "Baseline file")
	baselineCmd.PersistentFlags().IntVar(&baselineMaxFiles, "max-files", 0, "Override max_files_to_analyze")
	baselineDiffCmd.Flags().IntVar(&baselineLimit, "limit", 20, "Maximum entries listed per section")

	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineDiffCmd)
	rootCmd.AddCommand(baselineCmd)
}
