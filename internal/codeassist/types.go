// Package codeassist turns code-review requests into provider prompts, calls
// the configured LLM once, and normalizes the answer. When the provider is
// missing or misbehaves it degrades to deterministic heuristics or stubs.
package codeassist

// DefaultLanguage is assumed when a request leaves language empty.
const DefaultLanguage = "javascript"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Known reports whether s is one of the four recognised levels.
func (s Severity) Known() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Display maps unrecognised provider values to low for rendering. The stored
// value is never rewritten.
func (s Severity) Display() Severity {
	if s.Known() {
		return s
	}
	return SeverityLow
}

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ComplexityForScore buckets a quality score: >80 low, >60 medium, else high.
func ComplexityForScore(score int) Complexity {
	switch {
	case score > 80:
		return ComplexityLow
	case score > 60:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

// BugFinding is one reported problem. Line is 1-based; 0 means unknown and
// is omitted from JSON.
type BugFinding struct {
	Line       int      `json:"line,omitempty"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

type AnalysisResult struct {
	Bugs           []BugFinding `json:"bugs"`
	QualityScore   int          `json:"qualityScore"`
	Suggestions    []string     `json:"suggestions"`
	Complexity     Complexity   `json:"complexity"`
	SecurityIssues []string     `json:"securityIssues"`
}

type BugFixResult struct {
	FixedCode   string   `json:"fixedCode"`
	Explanation string   `json:"explanation"`
	Changes     []string `json:"changes"`
}

// Source says where a result came from.
type Source string

const (
	SourceProvider  Source = "provider"
	SourceHeuristic Source = "heuristic"
	SourceFallback  Source = "fallback"
)

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
