package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codeassist/internal/codeassist"
	"codeassist/internal/gateway/repository/analysis"
)

func (h *CodeHandler) Analyze(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	var req codeassist.AnalyzeRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Validate(codeassist.OpAnalyze, req); err != nil {
		if !rejectInvalid(c, err, "Please provide code to analyze") {
			log.Printf("analyze: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to analyze code")
		}
		return
	}
	count, admitted := h.admit(c, caller)
	if !admitted {
		return
	}
	out, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		if !rejectInvalid(c, err, "Please provide code to analyze") {
			log.Printf("analyze: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to analyze code")
		}
		return
	}

	rec := &analysis.Record{
		UserID:         caller.UserID,
		Code:           req.Code,
		Language:       out.Language,
		AnalysisResult: out.Result,
		Status:         analysis.StatusCompleted,
	}
	if err := h.analyses.Create(c.Request.Context(), rec); err != nil {
		log.Printf("analyze: persist for %s failed: %v", caller.UserID, err)
		rec.ID = ""
	}

	ok(c, "Code analysis completed", gin.H{
		"analysisId":    rec.ID,
		"analysis":      out.Result,
		"apiUsageCount": count,
	})
}

func (h *CodeHandler) FixBug(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	var req codeassist.FixBugRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Validate(codeassist.OpFixBug, req); err != nil {
		if !rejectInvalid(c, err, "Please provide code and bug description") {
			log.Printf("fix-bug: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to fix bug")
		}
		return
	}
	_, admitted := h.admit(c, caller)
	if !admitted {
		return
	}
	out, err := h.svc.FixBug(c.Request.Context(), req)
	if err != nil {
		if !rejectInvalid(c, err, "Please provide code and bug description") {
			log.Printf("fix-bug: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to fix bug")
		}
		return
	}
	ok(c, "Bug fix generated", out.Result)
}

func (h *CodeHandler) GenerateDocs(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	var req codeassist.DocsRequest
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Validate(codeassist.OpGenerateDocs, req); err != nil {
		if !rejectInvalid(c, err, "Please provide code to document") {
			log.Printf("generate-docs: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to generate documentation")
		}
		return
	}
	_, admitted := h.admit(c, caller)
	if !admitted {
		return
	}
	out, err := h.svc.GenerateDocs(c.Request.Context(), req)
	if err != nil {
		if !rejectInvalid(c, err, "Please provide code to document") {
			log.Printf("generate-docs: %v", err)
			fail(c, http.StatusInternalServerError, "Failed to generate documentation")
		}
		return
	}

	data := gin.H{"documentation": out.Result}
	// Placeholder text from a degraded call is not worth keeping.
	if out.Source == codeassist.SourceProvider {
		docID := uuid.NewString()
		if err := h.docs.Put(c.Request.Context(), caller.UserID, docID, []byte(out.Result)); err != nil {
			log.Printf("generate-docs: archive for %s failed: %v", caller.UserID, err)
		} else {
			data["docId"] = docID
		}
	}
	ok(c, "Documentation generated", data)
}

func (h *CodeHandler) History(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	limit := analysis.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	records, err := h.analyses.ListByUser(c.Request.Context(), caller.UserID, limit)
	if err != nil {
		log.Printf("history: list for %s failed: %v", caller.UserID, err)
		fail(c, http.StatusInternalServerError, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

func (h *CodeHandler) GetAnalysis(c *gin.Context) {
	caller, found := callerOrAbort(c)
	if !found {
		return
	}
	rec, err := h.analyses.Get(c.Request.Context(), c.Param("id"), caller.UserID)
	if errors.Is(err, analysis.ErrNotFound) {
		fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		log.Printf("analysis: get %s failed: %v", c.Param("id"), err)
		fail(c, http.StatusInternalServerError, "Failed to fetch analysis")
		return
	}
	ok(c, "", rec)
}
