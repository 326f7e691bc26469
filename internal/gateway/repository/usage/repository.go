// Package usage counts completed operations per user and billing period.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store tracks per-period counters.
type Store interface {
	Get(ctx context.Context, userID, period string) (int, error)
	// Increment adds one and returns the new count.
	Increment(ctx context.Context, userID, period string) (int, error)
	// Reserve adds one only while the count is below limit. It returns the
	// count after the call and whether a slot was taken.
	Reserve(ctx context.Context, userID, period string, limit int) (int, bool, error)
	Ping(ctx context.Context) error
}

// Period is the monthly bucket for t, e.g. "2026-10".
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func checkKey(userID, period string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	period = strings.TrimSpace(period)
	if userID == "" {
		return "", "", fmt.Errorf("user_id is required")
	}
	if period == "" {
		return "", "", fmt.Errorf("period is required")
	}
	return userID, period, nil
}
