package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"codeassist/internal/codeassist"
)

// prepare validates rec and fills ID, CreatedAt, Language and Status defaults.
func prepare(rec *Record, now time.Time) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	rec.UserID = strings.TrimSpace(rec.UserID)
	if rec.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if rec.Code == "" {
		return fmt.Errorf("code is required")
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	if strings.TrimSpace(rec.Language) == "" {
		rec.Language = codeassist.DefaultLanguage
	}
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}
	if rec.Bugs == nil {
		rec.Bugs = []codeassist.BugFinding{}
	}
	if rec.Suggestions == nil {
		rec.Suggestions = []string{}
	}
	if rec.SecurityIssues == nil {
		rec.SecurityIssues = []string{}
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return limit
}

func summary(rec Record) Record {
	rec.Code = ""
	return rec
}
