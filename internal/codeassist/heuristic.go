package codeassist

import (
	"regexp"
	"strings"
)

const heuristicBaseScore = 85

const (
	suggestionClean   = "No major issues detected. Consider adding error handling and tests."
	suggestionGeneric = "Address the reported issues and add tests that cover the affected lines."
	suggestionDebug   = "Remove debug print statements (e.g. console.log) before production use."
	securityHardcoded = "Hardcoded sensitive information detected"
)

var (
	reDebugPrint = regexp.MustCompile(`console\.(log|debug)\s*\(|\bprint\s*\(|fmt\.Print|System\.out\.print`)
	reForKeyword = regexp.MustCompile(`\bfor\b`)
)

// heuristicRule is evaluated against the whole text. match reports whether
// the rule fired; line is the first matching line or 0.
type heuristicRule struct {
	match   func(code string, lines []string) (bool, int)
	penalty int
	apply   func(r *AnalysisResult, line int)
}

var heuristicRules = []heuristicRule{
	{
		match:   firstLine(func(s string) bool { return strings.Contains(s, "var ") }),
		penalty: 5,
		apply: func(r *AnalysisResult, line int) {
			r.Bugs = append(r.Bugs, BugFinding{
				Line:       line,
				Severity:   SeverityMedium,
				Message:    `Use of "var" keyword instead of "let" or "const"`,
				Suggestion: `Replace "var" with "let" or "const" for better scoping`,
			})
		},
	},
	{
		match:   firstLine(func(s string) bool { return strings.Contains(strings.ToLower(s), "password") }),
		penalty: 15,
		apply: func(r *AnalysisResult, line int) {
			r.Bugs = append(r.Bugs, BugFinding{
				Line:       line,
				Severity:   SeverityCritical,
				Message:    "Potential hardcoded password detected",
				Suggestion: "Use environment variables for sensitive data",
			})
			r.SecurityIssues = append(r.SecurityIssues, securityHardcoded)
		},
	},
	{
		match:   firstLine(hasLooseEquality),
		penalty: 5,
		apply: func(r *AnalysisResult, line int) {
			r.Bugs = append(r.Bugs, BugFinding{
				Line:       line,
				Severity:   SeverityLow,
				Message:    `Loose equality "==" performs type coercion`,
				Suggestion: `Use strict equality "===" instead`,
			})
		},
	},
	{
		match:   firstLine(reDebugPrint.MatchString),
		penalty: 5,
		apply: func(r *AnalysisResult, _ int) {
			r.Suggestions = append(r.Suggestions, suggestionDebug)
		},
	},
	{
		match: func(code string, lines []string) (bool, int) {
			if !reForKeyword.MatchString(code) || !strings.Contains(code, "<=") {
				return false, 0
			}
			_, line := firstLine(func(s string) bool {
				return reForKeyword.MatchString(s) && strings.Contains(s, "<=")
			})(code, lines)
			return true, line
		},
		penalty: 10,
		apply: func(r *AnalysisResult, line int) {
			r.Bugs = append(r.Bugs, BugFinding{
				Line:       line,
				Severity:   SeverityHigh,
				Message:    "Potential array index out of bounds",
				Suggestion: "Use < instead of <= in array loops",
			})
		},
	},
}

// AnalyzeHeuristically scores code with fixed substring rules. It never
// fails and has no side effects; language is accepted for parity with the
// provider path and does not change the rules.
func AnalyzeHeuristically(code, language string) AnalysisResult {
	res := AnalysisResult{
		Bugs:           []BugFinding{},
		Suggestions:    []string{},
		SecurityIssues: []string{},
	}
	lines := strings.Split(code, "\n")
	score := heuristicBaseScore
	for _, rule := range heuristicRules {
		ok, line := rule.match(code, lines)
		if !ok {
			continue
		}
		rule.apply(&res, line)
		score -= rule.penalty
	}
	if len(res.Bugs) == 0 {
		res.Suggestions = append(res.Suggestions, suggestionClean)
	} else {
		res.Suggestions = append(res.Suggestions, suggestionGeneric)
	}
	res.QualityScore = clampScore(score)
	res.Complexity = ComplexityForScore(res.QualityScore)
	return res
}

// firstLine fires when any line satisfies pred and reports that line, 1-based.
func firstLine(pred func(string) bool) func(string, []string) (bool, int) {
	return func(_ string, lines []string) (bool, int) {
		for i, l := range lines {
			if pred(l) {
				return true, i + 1
			}
		}
		return false, 0
	}
}

// hasLooseEquality finds "==" that is not part of "===" or "!==".
func hasLooseEquality(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '=' || s[i+1] != '=' {
			continue
		}
		if i > 0 && (s[i-1] == '=' || s[i-1] == '!') {
			continue
		}
		if i+2 < len(s) && s[i+2] == '=' {
			continue
		}
		return true
	}
	return false
}
