package codeassist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"codeassist/internal/util/jsonutil"
)

// Normalize pulls the JSON object out of free-form provider text using the
// greedy first-'{' to last-'}' span. It fails with ErrNoPayloadFound when no
// such span exists and ErrMalformedPayload when the span is not a JSON object.
func Normalize(raw string) (json.RawMessage, error) {
	span, ok := jsonutil.ExtractObject(raw)
	if !ok {
		return nil, ErrNoPayloadFound
	}
	var obj map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex([]byte(span), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return json.RawMessage(span), nil
}

// DecodeAnalysis maps a normalized payload onto AnalysisResult. Every field
// is read on its own; a bad or absent field takes its default instead of
// failing the whole payload.
func DecodeAnalysis(raw json.RawMessage) AnalysisResult {
	fields := objectFields(raw)
	res := AnalysisResult{
		Bugs:           decodeBugs(fields["bugs"]),
		QualityScore:   clampScore(decodeInt(fields["qualityScore"])),
		Suggestions:    decodeStrings(fields["suggestions"]),
		Complexity:     decodeComplexity(fields["complexity"]),
		SecurityIssues: decodeStrings(fields["securityIssues"]),
	}
	return res
}

// DecodeBugFix maps a normalized payload onto BugFixResult. An empty
// fixedCode falls back to the original code.
func DecodeBugFix(raw json.RawMessage, originalCode string) BugFixResult {
	fields := objectFields(raw)
	res := BugFixResult{
		FixedCode:   decodeString(fields["fixedCode"]),
		Explanation: decodeString(fields["explanation"]),
		Changes:     decodeStrings(fields["changes"]),
	}
	if len(res.Changes) == 0 {
		// older prompts asked for preventionTips
		res.Changes = decodeStrings(fields["preventionTips"])
	}
	if strings.TrimSpace(res.FixedCode) == "" {
		res.FixedCode = originalCode
	}
	return res
}

func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex(raw, &fields); err != nil || fields == nil {
		return map[string]json.RawMessage{}
	}
	return fields
}

func decodeBugs(raw json.RawMessage) []BugFinding {
	out := []BugFinding{}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var f map[string]json.RawMessage
		if json.Unmarshal(item, &f) != nil || f == nil {
			continue
		}
		line := decodeInt(f["line"])
		if line < 1 {
			line = 0
		}
		sev := strings.TrimSpace(decodeString(f["severity"]))
		if sev == "" {
			sev = string(SeverityLow)
		}
		out = append(out, BugFinding{
			Line:       line,
			Severity:   Severity(sev),
			Message:    decodeString(f["message"]),
			Suggestion: decodeString(f["suggestion"]),
		})
	}
	return out
}

func decodeStrings(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		if s := decodeString(raw); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range items {
		if s := decodeString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeString accepts a JSON string; numbers and bools are rendered as text.
func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch x := v.(type) {
	case float64, bool:
		return fmt.Sprint(x)
	}
	return ""
}

// decodeInt accepts a JSON number or a numeric string. Anything else is 0.
func decodeInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return roundInt(f)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return roundInt(f)
		}
	}
	return 0
}

// roundInt saturates at the int32 range so huge or infinite values keep
// their sign. NaN is 0.
func roundInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Round(f))
}

func decodeComplexity(raw json.RawMessage) Complexity {
	c := Complexity(strings.ToLower(strings.TrimSpace(decodeString(raw))))
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return c
	}
	return ComplexityMedium
}
