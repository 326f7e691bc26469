package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeassist/internal/codeassist"
	"codeassist/internal/gateway/middleware"
	"codeassist/internal/gateway/repository/analysis"
	"codeassist/internal/gateway/repository/docs"
	"codeassist/internal/gateway/repository/usage"
)

// CodeHandler serves /api/code and the health check.
type CodeHandler struct {
	svc      *codeassist.Service
	analyses analysis.Store
	usage    usage.Store
	docs     docs.Store
	now      func() time.Time
}

func NewCodeHandler(svc *codeassist.Service, analyses analysis.Store, usageStore usage.Store, docStore docs.Store) *CodeHandler {
	return &CodeHandler{
		svc:      svc,
		analyses: analyses,
		usage:    usageStore,
		docs:     docStore,
		now:      time.Now,
	}
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func ok(c *gin.Context, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(http.StatusOK, body)
}

// bind decodes the JSON body into dst. An empty body leaves dst zeroed so
// the service reports the missing field.
func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	fail(c, http.StatusBadRequest, "Invalid JSON request body")
	return false
}

// rejectInvalid writes 400 for validation errors and reports whether it did.
func rejectInvalid(c *gin.Context, err error, message string) bool {
	var ve *codeassist.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"field":   ve.Field,
	})
	return true
}

// admit counts the operation before any provider work. Limited callers take
// a slot with Reserve so concurrent requests cannot pass the limit. It writes
// the error response and reports false when the request must stop.
func (h *CodeHandler) admit(c *gin.Context, caller middleware.Caller) (int, bool) {
	ctx := c.Request.Context()
	al, found := middleware.AllowanceFrom(c)
	if !found {
		al = middleware.Allowance{Period: usage.Period(h.now())}
	}
	if !al.Limited {
		n, err := h.usage.Increment(ctx, caller.UserID, al.Period)
		if err != nil {
			log.Printf("usage: increment for %s failed: %v", caller.UserID, err)
			return al.Used + 1, true
		}
		return n, true
	}
	n, reserved, err := h.usage.Reserve(ctx, caller.UserID, al.Period, al.Limit)
	if err != nil {
		log.Printf("usage: reserve for %s failed: %v", caller.UserID, err)
		middleware.AbortQuotaError(c)
		return 0, false
	}
	if !reserved {
		middleware.AbortLimitExceeded(c, n, al.Limit)
		return n, false
	}
	return n, true
}

func callerOrAbort(c *gin.Context) (middleware.Caller, bool) {
	caller, found := middleware.CallerFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, "Not authorized to access this route")
	}
	return caller, found
}

// Health reports process, storage and provider state.
func (h *CodeHandler) Health(c *gin.Context) {
	database := "Connected"
	if err := h.analyses.Ping(c.Request.Context()); err != nil {
		log.Printf("health: database ping failed: %v", err)
		database = "Disconnected"
	}
	ai := "No AI API Key"
	if avail := h.svc.Availability(); avail.Configured() {
		ai = providerLabel(avail.Provider()) + " API Configured"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "Server is running!",
		"timestamp": h.now().UTC(),
		"database":  database,
		"ai":        ai,
	})
}

func providerLabel(provider string) string {
	switch provider {
	case "groq":
		return "Groq"
	case "gemini":
		return "Gemini"
	default:
		return provider
	}
}

// NotFound answers every unrouted request.
func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "Route not found: "+c.Request.Method+" "+c.Request.URL.RequestURI())
}
