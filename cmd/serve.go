package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/user/gosec-autofix/pkg/monitor"
	"github.com/user/gosec-autofix/pkg/server"
)

var (
	serveAddr  string
	serveRules string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis and fix API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(serveRules)
		if err != nil {
			return err
		}
		if !DebugMode {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, cancel := signalContext()
		defer cancel()
		a, err := newAnalyzer(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Fixes().Close()

		srv := server.New(a, monitor.NewActivityLog(monitor.DefaultActivityLimit), server.NewStats(), Version)
		return srv.Run(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveRules, "rules", "", "Directory of custom pattern YAML files")
	rootCmd.AddCommand(serveCmd)
}
