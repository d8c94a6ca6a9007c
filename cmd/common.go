package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/fixer"
)

// loadConfig reads the user config and applies a --rules override.
func loadConfig(rulesDir string) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rulesDir != "" {
		cfg.RulesDir = rulesDir
	}
	return cfg, nil
}

// newAnalyzer builds the scanner from the built-in catalog plus any custom
// rules, and a fix service that uses AI only when useAI is set.
func newAnalyzer(ctx context.Context, cfg *config.Config, useAI bool) (*analysis.Analyzer, error) {
	cat := engine.DefaultCatalog()
	if cfg.RulesDir != "" {
		var err error
		if cat, err = engine.LoadRules(cat, cfg.RulesDir); err != nil {
			return nil, err
		}
	}

	fixes := fixer.NewService(nil)
	if useAI {
		fixes = fixer.NewServiceFromConfig(ctx, cfg)
	}
	return analysis.New(engine.NewScanner(cat), fixes), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
