package codeassist

import (
	"context"
	"log"

	"codeassist/internal/llm"
)

const (
	docsUnavailableNoProvider = "Documentation generation is unavailable: the AI provider is not configured."
	docsUnavailableFailed     = "Documentation generation is unavailable: the AI provider request failed."
	fixUnavailableNoProvider  = "AI provider not configured; the original code is returned unchanged."
	fixUnavailableFailed      = "AI provider request failed; the original code is returned unchanged."
)

var (
	structuredOpts = llm.Options{Temperature: 0.3, MaxTokens: 2000}
	docsOpts       = llm.Options{Temperature: 0.5, MaxTokens: 1500}
)

// Gateway decides per request whether the provider is called and owns the
// fallback for each operation. It makes at most one provider call per
// request and never retries.
type Gateway struct {
	client llm.Client
	avail  llm.Availability
	log    *log.Logger
}

// NewGateway wires a provider client with the availability computed at
// startup. client may be nil when avail is not configured.
func NewGateway(client llm.Client, avail llm.Availability, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{client: client, avail: avail, log: logger}
}

// Available reports whether requests will reach the provider.
func (g *Gateway) Available() bool {
	return g != nil && g.client != nil && g.avail.Configured()
}

func (g *Gateway) Availability() llm.Availability { return g.avail }

// Analyze returns the provider's analysis or, on any failure, the heuristic one.
func (g *Gateway) Analyze(ctx context.Context, code, language, prompt string) (AnalysisResult, Source) {
	if !g.Available() {
		return AnalyzeHeuristically(code, language), SourceHeuristic
	}
	text, err := g.client.Generate(ctx, prompt, structuredOpts)
	if err != nil {
		g.log.Printf("codeassist: analyze falling back to heuristics: %v", err)
		return AnalyzeHeuristically(code, language), SourceHeuristic
	}
	payload, err := Normalize(text)
	if err != nil {
		g.log.Printf("codeassist: analyze falling back to heuristics: %v", err)
		return AnalyzeHeuristically(code, language), SourceHeuristic
	}
	return DecodeAnalysis(payload), SourceProvider
}

// FixBug returns the provider's fix or the input code unchanged.
func (g *Gateway) FixBug(ctx context.Context, code, prompt string) (BugFixResult, Source) {
	if !g.Available() {
		return identityFix(code, fixUnavailableNoProvider), SourceFallback
	}
	text, err := g.client.Generate(ctx, prompt, structuredOpts)
	if err != nil {
		g.log.Printf("codeassist: fix-bug falling back to identity: %v", err)
		return identityFix(code, fixUnavailableFailed), SourceFallback
	}
	payload, err := Normalize(text)
	if err != nil {
		g.log.Printf("codeassist: fix-bug falling back to identity: %v", err)
		return identityFix(code, fixUnavailableFailed), SourceFallback
	}
	return DecodeBugFix(payload, code), SourceProvider
}

// Docs returns the provider's markdown or a fixed placeholder.
func (g *Gateway) Docs(ctx context.Context, prompt string) (string, Source) {
	if !g.Available() {
		return docsUnavailableNoProvider, SourceFallback
	}
	text, err := g.client.Generate(ctx, prompt, docsOpts)
	if err == nil {
		text = CleanDocs(text)
	}
	if err != nil || text == "" {
		g.log.Printf("codeassist: generate-docs falling back to placeholder: %v", err)
		return docsUnavailableFailed, SourceFallback
	}
	return text, SourceProvider
}

func identityFix(code, explanation string) BugFixResult {
	return BugFixResult{FixedCode: code, Explanation: explanation, Changes: []string{}}
}
