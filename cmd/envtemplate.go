package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/fixer"
)

var envFrom string

var envTemplateCmd = &cobra.Command{
	Use:   "env-template [NAME...]",
	Short: "Print a .env.example for the given variables or for a file's secrets",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := append([]string(nil), args...)
		if envFrom != "" {
			data, err := os.ReadFile(envFrom)
			if err != nil {
				return err
			}
			ext := analysis.Extension(envFrom)
			code := string(data)
			issues := engine.Scan(code, ext)
			fixes := fixer.GenerateFixes(context.Background(), fixer.NewRuleBasedFixStrategy(), issues, code, ext)
			names = append(names, engine.EnvVarsFrom(fixes)...)
		}

		tmpl := engine.BuildEnvTemplate(names)
		if tmpl == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "No environment variables needed.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), tmpl)
		return nil
	},
}

func init() {
	envTemplateCmd.Flags().StringVar(&envFrom, "from", "", "Derive variable names from the secrets found in this file")
	rootCmd.AddCommand(envTemplateCmd)
}
