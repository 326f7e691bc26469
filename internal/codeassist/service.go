package codeassist

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"codeassist/internal/llm"
	"codeassist/internal/observability"
)

const (
	OpAnalyze      = "analyze"
	OpFixBug       = "fix_bug"
	OpGenerateDocs = "generate_docs"
)

type AnalyzeRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
}

type FixBugRequest struct {
	Code           string `json:"code" validate:"required"`
	BugDescription string `json:"bugDescription" validate:"required"`
	Language       string `json:"language"`
}

type DocsRequest struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language"`
}

// Outcome carries a result together with where it came from.
type Outcome[T any] struct {
	Result   T
	Source   Source
	Language string
}

// Service exposes the three code operations. Each call validates input,
// builds a prompt and makes one trip through the Gateway.
type Service struct {
	gw       *Gateway
	validate *validator.Validate
	metrics  *observability.Metrics
}

func NewService(gw *Gateway, metrics *observability.Metrics) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{gw: gw, validate: v, metrics: metrics}
}

// ProviderAvailable reports whether requests will reach a live provider.
func (s *Service) ProviderAvailable() bool { return s.gw.Available() }

func (s *Service) Availability() llm.Availability { return s.gw.Availability() }

func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (Outcome[AnalysisResult], error) {
	if err := s.check(OpAnalyze, req); err != nil {
		return Outcome[AnalysisResult]{}, err
	}
	lang := languageOrDefault(req.Language)
	res, src := s.gw.Analyze(ctx, req.Code, lang, AnalyzePrompt(req.Code, lang))
	s.metrics.ObserveRequest(OpAnalyze, string(src))
	return Outcome[AnalysisResult]{Result: res, Source: src, Language: lang}, nil
}

func (s *Service) FixBug(ctx context.Context, req FixBugRequest) (Outcome[BugFixResult], error) {
	if err := s.check(OpFixBug, req); err != nil {
		return Outcome[BugFixResult]{}, err
	}
	lang := languageOrDefault(req.Language)
	res, src := s.gw.FixBug(ctx, req.Code, FixBugPrompt(req.Code, req.BugDescription, lang))
	s.metrics.ObserveRequest(OpFixBug, string(src))
	return Outcome[BugFixResult]{Result: res, Source: src, Language: lang}, nil
}

func (s *Service) GenerateDocs(ctx context.Context, req DocsRequest) (Outcome[string], error) {
	if err := s.check(OpGenerateDocs, req); err != nil {
		return Outcome[string]{}, err
	}
	lang := languageOrDefault(req.Language)
	doc, src := s.gw.Docs(ctx, DocsPrompt(req.Code, lang))
	s.metrics.ObserveRequest(OpGenerateDocs, string(src))
	return Outcome[string]{Result: doc, Source: src, Language: lang}, nil
}

// Validate runs the same checks as the operation named by op without doing
// any provider work.
func (s *Service) Validate(op string, req any) error {
	return s.check(op, req)
}

// check returns a *ValidationError naming the first missing field.
func (s *Service) check(op string, req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	s.metrics.ObserveValidationFailure(op)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field()}
	}
	return err
}

func languageOrDefault(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
