package codeassist

import (
	"bytes"
	"fmt"
	"strings"
)

const analyzeShape = `{
  "bugs": [
    {
      "line": 1,
      "severity": "critical|high|medium|low",
      "message": "description",
      "suggestion": "how to fix"
    }
  ],
  "qualityScore": 75,
  "suggestions": ["suggestion 1", "suggestion 2"],
  "complexity": "low|medium|high",
  "securityIssues": ["issue 1"]
}`

const fixShape = `{
  "fixedCode": "corrected code here",
  "explanation": "what was wrong and how it was fixed",
  "changes": ["change 1", "change 2"]
}`

// AnalyzePrompt asks for bugs, a quality score, suggestions, complexity and
// security issues as a single JSON object.
func AnalyzePrompt(code, language string) string {
	var buf bytes.Buffer
	writeSection(&buf, "ROLE", "You are an expert code analyzer.")
	writeSection(&buf, "TASK", formatNumbered([]string{
		fmt.Sprintf("Analyze the following %s code.", language),
		"List bugs with severity (critical, high, medium, low) and the 1-based line number.",
		"Give a code quality score from 0 to 100.",
		"Point out performance issues and best practice suggestions.",
		"List security vulnerabilities.",
		"Rate complexity as low, medium or high.",
	}))
	writeSection(&buf, "CODE", fenced(code, language))
	writeSection(&buf, "OUTPUT_FORMAT", "Return ONLY valid JSON in this exact format (no markdown, no extra text):\n"+analyzeShape)
	return finish(&buf)
}

// FixBugPrompt embeds the caller's bug description and asks for fixed code,
// an explanation and a list of changes as JSON.
func FixBugPrompt(code, bugDescription, language string) string {
	var buf bytes.Buffer
	writeSection(&buf, "ROLE", "You are an expert programmer.")
	writeSection(&buf, "TASK", fmt.Sprintf("Fix the following bug in this %s code.", language))
	writeSection(&buf, "BUG", bugDescription)
	writeSection(&buf, "CODE", fenced(code, language))
	writeSection(&buf, "OUTPUT_FORMAT", "Return ONLY valid JSON in this exact format (no markdown, no extra text):\n"+fixShape)
	return finish(&buf)
}

// DocsPrompt asks for markdown documentation. There is no JSON constraint.
func DocsPrompt(code, language string) string {
	var buf bytes.Buffer
	writeSection(&buf, "TASK", fmt.Sprintf("Generate comprehensive documentation for this %s code.", language))
	writeSection(&buf, "CODE", fenced(code, language))
	writeSection(&buf, "INCLUDE", formatNumbered([]string{
		"Function/class descriptions",
		"Parameter explanations",
		"Return value descriptions",
		"Usage examples",
		"Edge cases, notes and warnings",
	}))
	writeSection(&buf, "OUTPUT_FORMAT", "Format the answer as markdown.")
	return finish(&buf)
}

func fenced(code, language string) string {
	var b strings.Builder
	b.WriteString("```")
	b.WriteString(language)
	b.WriteString("\n")
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

func formatNumbered(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}

func finish(buf *bytes.Buffer) string {
	return strings.TrimSpace(buf.String()) + "\n"
}
