package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"newsrag/internal/model"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "s1"))
	require.NoError(t, s.AppendMessage(ctx, "s1", model.RoleUser, "hi"))

	history, err := s.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	require.Equal(t, model.RoleUser, history.Messages[0].Role)
	require.Equal(t, "hi", history.Messages[0].Content)
	require.NotEmpty(t, history.Messages[0].ID)
}

func TestAppendCreatesMissingSession(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.AppendMessage(ctx, "implicit", model.RoleUser, "question"))
	history, err := s.GetHistory(ctx, "implicit")
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
}

func TestClearPreservesIdentity(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, "s1"))
	require.NoError(t, s.AppendMessage(ctx, "s1", model.RoleUser, "hi"))
	before, err := s.GetHistory(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, "s1"))
	after, err := s.GetHistory(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, after.Messages)
	require.Equal(t, before.CreatedAt, after.CreatedAt)
	require.False(t, after.LastActivity.Before(before.LastActivity))
}

func TestGetHistoryNotFound(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	_, err := s.GetHistory(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClearNotFound(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	require.ErrorIs(t, s.Clear(context.Background(), "nope"), ErrSessionNotFound)
}

func TestListSessionsFiltersAndSorts(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Create(ctx, "empty"))
	require.NoError(t, s.AppendMessage(ctx, "older", model.RoleUser, "a"))
	clock = base.Add(time.Minute)
	require.NoError(t, s.AppendMessage(ctx, "newer", model.RoleUser, "b"))

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "newer", list[0].SessionID)
	require.Equal(t, "older", list[1].SessionID)
	require.Equal(t, 1, list[0].MessageCount)
}

func TestCleanupExpired(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	require.NoError(t, s.AppendMessage(ctx, "stale", model.RoleUser, "old news"))
	clock = base.Add(30 * time.Minute)
	require.NoError(t, s.AppendMessage(ctx, "fresh", model.RoleUser, "new news"))

	clock = base.Add(85 * time.Minute)
	removed, err := s.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = s.GetHistory(ctx, "stale")
	require.ErrorIs(t, err, ErrSessionNotFound)

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "fresh", list[0].SessionID)
}

func TestStorageTTLEvictsWithoutSweep(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time { return clock }

	require.NoError(t, s.AppendMessage(ctx, "s1", model.RoleUser, "hi"))
	clock = base.Add(2 * time.Hour)

	// No sweep ran, but storage-layer expiry is authoritative for existence.
	_, err := s.GetHistory(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
