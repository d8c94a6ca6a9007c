package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/fixer"
	"github.com/user/gosec-autofix/pkg/logging"
	"github.com/user/gosec-autofix/pkg/monitor"
)

// Server exposes the scanner and fix pipeline over HTTP.
type Server struct {
	analyzer *analysis.Analyzer
	fixes    *fixer.Service
	activity *monitor.ActivityLog
	stats    *Stats
	version  string
}

// New wires a server around shared state. Nil arguments get fresh defaults;
// an analyzer without a fix service falls back to rule-based fixes.
func New(a *analysis.Analyzer, activity *monitor.ActivityLog, stats *Stats, version string) *Server {
	if a == nil {
		a = analysis.New(nil, nil)
	}
	if a.Fixes() == nil {
		a = analysis.New(a.Scanner(), fixer.NewService(nil))
	}
	if activity == nil {
		activity = monitor.NewActivityLog(0)
	}
	if stats == nil {
		stats = NewStats()
	}
	return &Server{analyzer: a, fixes: a.Fixes(), activity: activity, stats: stats, version: version}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/ai-status", s.handleAIStatus)
		api.GET("/stats", s.handleStats)
		api.GET("/activity", s.handleActivity)
		api.POST("/analyze", s.handleAnalyze)
		api.POST("/generate-fixes", s.handleGenerateFixes)
		api.POST("/apply-fixes", s.handleApplyFixes)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Infof("listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.With(
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		).Debugf("request")
	}
}
