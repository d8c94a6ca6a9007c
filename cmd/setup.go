package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/llm"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		prompt := func(label string) string {
			fmt.Fprint(out, label)
			scanner.Scan()
			return strings.TrimSpace(scanner.Text())
		}

		fmt.Fprintln(out, "Welcome to gosec-autofix Setup Wizard")
		fmt.Fprintln(out, "-------------------------------------")

		// 1. Select Provider
		fmt.Fprintln(out, "Step 1: Choose your AI Provider for fix generation")
		fmt.Fprintln(out, "1. Gemini (Google)")
		fmt.Fprintln(out, "2. OpenAI")

		var provider string
		switch strings.ToLower(prompt("Enter number or name > ")) {
		case "1", "gemini":
			provider = "gemini"
		case "2", "openai":
			provider = "openai"
		default:
			return fmt.Errorf("invalid choice")
		}

		// 2. Enter API Key
		fmt.Fprintf(out, "\nStep 2: Enter API Key for %s\n", provider)
		apiKey := prompt("> ")
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}

		// 3. Fetch Models
		fmt.Fprintln(out, "\nStep 3: Validating key and fetching available models...")
		ctx := context.Background()
		p, err := llm.NewProvider(ctx, provider, llm.Options{APIKey: apiKey})
		if err != nil {
			return fmt.Errorf("initialize provider: %w", err)
		}
		if closer, ok := p.(io.Closer); ok {
			defer closer.Close()
		}

		var selectedModel string
		models, err := p.ListModels(ctx)
		if err != nil || len(models) == 0 {
			fmt.Fprintf(out, "Warning: Could not fetch models from API: %v\n", err)
			fmt.Fprintln(out, "Please enter model name manually (e.g., 'gemini-1.5-flash', 'gpt-4o-mini'):")
			selectedModel = prompt("> ")
		} else {
			fmt.Fprintf(out, "Successfully retrieved %d models.\n", len(models))
			for i, m := range models {
				fmt.Fprintf(out, "%d. %s\n", i+1, m)
			}
			selIdx, err := strconv.Atoi(prompt("Select Model (number) > "))
			if err != nil || selIdx < 1 || selIdx > len(models) {
				fmt.Fprintln(out, "Invalid selection. Using first available model.")
				selectedModel = models[0]
			} else {
				selectedModel = models[selIdx-1]
			}
		}

		// 4. Agent mode
		fmt.Fprintln(out, "\nStep 4: Choose the watch mode (monitor, suggest, autofix)")
		mode := strings.ToLower(prompt("[monitor] > "))

		// 5. Save Configuration
		fmt.Fprintln(out, "\nStep 5: Saving Configuration...")
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		cfg.SelectedProvider = provider
		cfg.SelectedModel = selectedModel
		cfg.SetAPIKey(provider, apiKey)
		if mode != "" {
			cfg.AgentMode = mode
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		if err := config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintln(out, "-------------------------------------")
		fmt.Fprintln(out, "Setup Complete!")
		fmt.Fprintf(out, "Provider: %s\n", provider)
		fmt.Fprintf(out, "Model:    %s\n", selectedModel)
		fmt.Fprintf(out, "Mode:     %s\n", cfg.AgentMode)
		fmt.Fprintln(out, "You can now run 'gosec-autofix fix <file>' or 'gosec-autofix watch'")
		return nil
	},
}

func init() {
	configCmd.AddCommand(setupCmd)
}
