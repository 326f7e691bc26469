// Package docs archives generated documentation per user.
package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store keeps one markdown object per generated document.
type Store interface {
	Put(ctx context.Context, userID, docID string, content []byte) error
	Get(ctx context.Context, userID, docID string) ([]byte, error)
	// List returns the user's document IDs in ascending order.
	List(ctx context.Context, userID string) ([]string, error)
	// URL returns a download link, or "" when the backend cannot serve one.
	URL(ctx context.Context, userID, docID string) (string, error)
}

var ErrNotFound = errors.New("document not found")

const (
	keyPrefix = "docs/"
	keySuffix = ".md"
)

func checkIDs(userID, docID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	docID = strings.Trim(strings.TrimSpace(docID), "/")
	if userID == "" {
		return "", "", fmt.Errorf("user_id is required")
	}
	if docID == "" {
		return "", "", fmt.Errorf("doc_id is required")
	}
	if strings.ContainsAny(userID, "/") || strings.Contains(docID, "/") {
		return "", "", fmt.Errorf("ids must not contain '/'")
	}
	return userID, strings.TrimSuffix(docID, keySuffix), nil
}

// ObjectKey is docs/<userID>/<docID>.md.
func ObjectKey(userID, docID string) string {
	return userPrefix(userID) + docID + keySuffix
}

func userPrefix(userID string) string {
	return keyPrefix + strings.TrimSpace(userID) + "/"
}

func docIDFromKey(prefix, key string) string {
	return strings.TrimSuffix(strings.TrimPrefix(key, prefix), keySuffix)
}
