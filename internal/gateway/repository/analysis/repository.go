package analysis

import (
	"context"
	"errors"
	"time"

	"codeassist/internal/codeassist"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DefaultHistoryLimit caps history listings.
const DefaultHistoryLimit = 20

// Record is the persisted, flattened analysis: the result fields sit next
// to the request metadata rather than under a nested object.
type Record struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Code     string `json:"code,omitempty"`
	Language string `json:"language"`
	codeassist.AnalysisResult
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists analyses per user.
type Store interface {
	// Create assigns ID and CreatedAt when empty and stores rec.
	Create(ctx context.Context, rec *Record) error
	// Get returns the record only if it belongs to userID.
	Get(ctx context.Context, id, userID string) (Record, error)
	// ListByUser returns newest first, without Code.
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("analysis not found")
