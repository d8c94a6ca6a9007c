package server

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/logging"
	"github.com/user/gosec-autofix/pkg/metrics"
	"github.com/user/gosec-autofix/pkg/monitor"
)

const defaultExtension = "py"

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type AnalyzeRequest struct {
	Code          string `json:"code"`
	Extension     string `json:"extension"`
	GenerateFixes *bool  `json:"generate_fixes"`
}

type GenerateFixesRequest struct {
	Issues    []engine.Issue `json:"issues"`
	Code      string         `json:"code"`
	Extension string         `json:"extension"`
}

type GenerateFixesResponse struct {
	Status    string       `json:"status"`
	Fixes     []engine.Fix `json:"fixes"`
	Total     int          `json:"total_fixes"`
	AIFixes   int          `json:"ai_fixes"`
	RuleFixes int          `json:"rule_fixes"`
	AIStatus  any          `json:"ai_status"`
}

type ApplyFixesRequest struct {
	Code  string       `json:"code"`
	Fixes []engine.Fix `json:"fixes"`
}

type ApplyFixesResponse struct {
	FixedCode           string       `json:"fixed_code"`
	FixesApplied        int          `json:"fixes_applied"`
	TotalFixesAttempted int          `json:"total_fixes_attempted"`
	SuccessRate         float64      `json:"success_rate"`
	EnvVarsNeeded       []string     `json:"env_vars_needed"`
	EnvFileContent      string       `json:"env_file_content"`
	FixesDetails        []engine.Fix `json:"fixes_details"`
}

func badRequest(c *gin.Context, msg, code string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: code})
}

func (s *Server) handleHealth(c *gin.Context) {
	cat := s.analyzer.Scanner().Catalog()
	patterns := make(map[engine.Concern]int, len(engine.Concerns))
	for _, concern := range engine.Concerns {
		patterns[concern] = cat.PatternCount(concern)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().UTC(),
		"version":        s.version,
		"patterns":       patterns,
		"total_patterns": cat.TotalPatterns(),
		"ai_status":      s.fixes.Status(),
	})
}

func (s *Server) handleAIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.fixes.Status())
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":           s.stats.Snapshot(),
		"activity_count":  s.activity.Len(),
		"total_patterns":  s.analyzer.Scanner().Catalog().TotalPatterns(),
		"ai_configured":   s.fixes.Configured(),
		"supported_langs": []string{"python", "javascript", "typescript", "sql"},
	})
}

func (s *Server) handleActivity(c *gin.Context) {
	entries := s.activity.Entries()
	c.JSON(http.StatusOK, gin.H{"activities": entries, "total": len(entries)})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "INVALID_REQUEST")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		badRequest(c, "no code provided", "EMPTY_CODE")
		return
	}
	ext := req.Extension
	if ext == "" {
		ext = defaultExtension
	}
	withFixes := req.GenerateFixes == nil || *req.GenerateFixes

	report := s.analyzer.AnalyzeCode(c.Request.Context(), req.Code, ext, withFixes)
	s.stats.recordAnalysis(report.Summary.TotalIssues, len(report.IntelligentFixes))
	s.activity.Record(monitor.Activity{
		Kind:        monitor.KindAnalyze,
		Message:     "analyzed " + ext + " snippet",
		IssuesFound: report.Summary.TotalIssues,
	})
	logging.Debugf("analyze: %d issues, score %d", report.Summary.TotalIssues, report.SecurityScore)

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGenerateFixes(c *gin.Context) {
	var req GenerateFixesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "INVALID_REQUEST")
		return
	}
	if len(req.Issues) == 0 {
		badRequest(c, "no issues provided", "EMPTY_ISSUES")
		return
	}
	ext := req.Extension
	if ext == "" {
		ext = defaultExtension
	}

	fixes := s.fixes.GenerateFixes(c.Request.Context(), req.Issues, req.Code, ext)
	s.stats.recordGenerated(len(fixes))
	s.activity.Record(monitor.Activity{
		Kind:        monitor.KindGenerated,
		Message:     "generated fixes",
		IssuesFound: len(req.Issues),
	})

	resp := GenerateFixesResponse{
		Status:   "success",
		Fixes:    fixes,
		Total:    len(fixes),
		AIStatus: s.fixes.Status(),
	}
	for _, f := range fixes {
		switch f.FixType {
		case engine.FixTypeAIGenerated:
			resp.AIFixes++
		case engine.FixTypeRuleBased:
			resp.RuleFixes++
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleApplyFixes(c *gin.Context) {
	var req ApplyFixesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", "INVALID_REQUEST")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		badRequest(c, "no code provided", "EMPTY_CODE")
		return
	}
	if len(req.Fixes) == 0 {
		badRequest(c, "no fixes provided", "EMPTY_FIXES")
		return
	}

	fixed, applied, envVars := engine.ApplyFixes(req.Code, req.Fixes)
	metrics.FixesApplied.Add(float64(applied))
	s.stats.recordApplied(applied)
	s.activity.Record(monitor.Activity{
		Kind:         monitor.KindApplyFix,
		Message:      "applied fixes",
		FixesApplied: applied,
	})

	rate := float64(applied) / float64(len(req.Fixes)) * 100
	c.JSON(http.StatusOK, ApplyFixesResponse{
		FixedCode:           fixed,
		FixesApplied:        applied,
		TotalFixesAttempted: len(req.Fixes),
		SuccessRate:         math.Round(rate*10) / 10,
		EnvVarsNeeded:       envVars,
		EnvFileContent:      engine.BuildEnvTemplate(envVars),
		FixesDetails:        req.Fixes,
	})
}
