package engine

// Suggestion is static remediation guidance for an issue type.
type Suggestion struct {
	Immediate      string `json:"immediate"`
	Solution       string `json:"solution"`
	Example        string `json:"example"`
	SecurityImpact string `json:"security_impact"`
}

var suggestions = map[string]Suggestion{
	TypeSecretExposure: {
		Immediate:      "Remove the hardcoded secret immediately",
		Solution:       `Use environment variables: os.getenv("SECRET_NAME")`,
		Example:        `api_key = os.getenv("API_KEY")`,
		SecurityImpact: "CRITICAL - Exposed secrets can lead to unauthorized access",
	},
	TypeDebugStatement: {
		Immediate:      "Remove or comment out debug statements",
		Solution:       "Use proper logging with configurable levels",
		Example:        `logger.debug("Debug message") instead of print()`,
		SecurityImpact: "LOW - May expose sensitive information in logs",
	},
	TypeCodeQuality: {
		Immediate:      "Review and refactor the flagged code",
		Solution:       "Follow language-specific best practices",
		Example:        "Use specific exception handling instead of bare except",
		SecurityImpact: "MEDIUM - Poor code quality can introduce vulnerabilities",
	},
	TypePerformance: {
		Immediate:      "Optimize the identified performance bottleneck",
		Solution:       "Use more efficient algorithms or data structures",
		Example:        "Cache DOM queries or use list comprehensions",
		SecurityImpact: "LOW - Performance issues can lead to DoS vulnerabilities",
	},
}

// SuggestionFor returns the guidance for an issue type, defaulting to code quality.
func SuggestionFor(issueType string) Suggestion {
	if s, ok := suggestions[issueType]; ok {
		return s
	}
	return suggestions[TypeCodeQuality]
}
