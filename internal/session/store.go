package session

import (
	"context"
	"errors"

	"newsrag/internal/model"
)

// ErrSessionNotFound means neither the session record nor its message cache
// exists. Expiry of the backing keys produces the same result as deletion.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps TTL-bounded conversation state. A session is written in two
// companion representations: the canonical record (full history) and a
// recency-ordered per-message cache list; every mutation must reflect the
// same message in both. Storage-layer TTL is the ground truth for existence;
// CleanupExpired is a sweep that removes records whose logical TTL has
// elapsed and prunes stale id-set entries, never the sole expiry mechanism.
type Store interface {
	// Create writes a fresh session record, overwriting any previous one
	// under the same id.
	Create(ctx context.Context, id string) error

	// AppendMessage appends one message; a missing session is silently
	// created first. A failed write leaves prior state untouched.
	AppendMessage(ctx context.Context, id, role, content string) error

	// GetHistory returns the canonical record with messages overlaid from
	// the per-message cache when it is populated.
	GetHistory(ctx context.Context, id string) (*model.Session, error)

	// Clear truncates messages and drops the cache list while keeping the
	// session's identity and created_at.
	Clear(ctx context.Context, id string) error

	// ListSessions enumerates all tracked ids with at least one message,
	// most recently active first. This is a full O(n) scan, not an indexed
	// query; acceptable at session-store scale.
	ListSessions(ctx context.Context) ([]model.SessionSummary, error)

	// CleanupExpired deletes every session whose inactivity exceeds the TTL
	// and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
}
