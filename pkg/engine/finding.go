package engine

// Severity is the ordinal risk level attached to a pattern and every issue it produces.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists the levels from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities for sorting; lower is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Concern is the top-level classification axis.
type Concern string

const (
	ConcernSecurity    Concern = "security"
	ConcernDebug       Concern = "debug"
	ConcernQuality     Concern = "quality"
	ConcernPerformance Concern = "performance"
)

// Concerns lists the concerns in catalog declaration order.
var Concerns = []Concern{ConcernSecurity, ConcernDebug, ConcernQuality, ConcernPerformance}

// IssueType returns the issue type a match in this concern produces.
func (c Concern) IssueType() string {
	switch c {
	case ConcernSecurity:
		return TypeSecretExposure
	case ConcernDebug:
		return TypeDebugStatement
	case ConcernPerformance:
		return TypePerformance
	default:
		return TypeCodeQuality
	}
}

const (
	TypeSecretExposure = "secret_exposure"
	TypeDebugStatement = "debug_statement"
	TypeCodeQuality    = "code_quality"
	TypePerformance    = "performance"
)

// Confidence levels shared by issues and fixes.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Issue is a single pattern match flagged during a scan
type Issue struct {
	Type         string   `json:"type"`
	Category     Concern  `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Match        string   `json:"match"`
	FixAvailable bool     `json:"fix_available"`
	Confidence   string   `json:"confidence"`

	// Set by downstream consumers, never by the scanner.
	AIFixAvailable bool        `json:"ai_fix_available,omitempty"`
	AIFix          *Fix        `json:"ai_fix,omitempty"`
	FixSuggestion  *Suggestion `json:"fix_suggestion,omitempty"`
}

// Fix types
const (
	FixTypeAIGenerated  = "ai_generated"
	FixTypeAISuggestion = "ai_suggestion"
	FixTypeRuleBased    = "rule_based"
	FixTypeManualReview = "manual_review"
)

// Fix is a proposed replacement for the text an Issue matched.
// It is tied to its Issue only by Line and OriginalCode.
type Fix struct {
	OriginalCode  string   `json:"original_code"`
	FixedCode     string   `json:"fixed_code"`
	Explanation   string   `json:"explanation"`
	EnvVarsNeeded []string `json:"env_vars_needed"`
	Confidence    string   `json:"confidence"`
	FixType       string   `json:"fix_type"`
	Line          int      `json:"line"`
	Applied       bool     `json:"applied"`
}
