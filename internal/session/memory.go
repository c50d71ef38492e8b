package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsrag/internal/model"
)

type memoryEntry struct {
	record    model.Session
	expiresAt time.Time
}

// MemoryStore is the in-process fallback used when redis is unreachable at
// startup. Nothing survives a restart; the service runs explicitly degraded.
// Per-key TTL is emulated by an expiry timestamp checked on every access,
// mirroring how the storage layer would evict.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*memoryEntry

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, id string) error {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &memoryEntry{
		record: model.Session{
			SessionID:    id,
			CreatedAt:    now,
			LastActivity: now,
			Messages:     []model.Message{},
		},
		expiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, id, role, content string) error {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.alive(id)
	if entry == nil {
		entry = &memoryEntry{
			record: model.Session{
				SessionID:    id,
				CreatedAt:    now,
				LastActivity: now,
				Messages:     []model.Message{},
			},
		}
		s.entries[id] = entry
	}

	entry.record.Messages = append(entry.record.Messages, model.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	entry.record.LastActivity = now
	entry.expiresAt = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry := s.alive(id)
	if entry == nil {
		return nil, ErrSessionNotFound
	}
	record := entry.record
	record.Messages = append([]model.Message(nil), entry.record.Messages...)
	return &record, nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.alive(id)
	if entry == nil {
		return ErrSessionNotFound
	}
	now := s.now().UTC()
	entry.record.Messages = []model.Message{}
	entry.record.LastActivity = now
	entry.expiresAt = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]model.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.SessionSummary, 0, len(s.entries))
	for id := range s.entries {
		entry := s.alive(id)
		if entry == nil || len(entry.record.Messages) == 0 {
			continue
		}
		summaries = append(summaries, model.SessionSummary{
			SessionID:    entry.record.SessionID,
			CreatedAt:    entry.record.CreatedAt,
			LastActivity: entry.record.LastActivity,
			MessageCount: len(entry.record.Messages),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries, nil
}

func (s *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if now.Sub(entry.record.LastActivity) > s.ttl || !entry.expiresAt.After(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// alive returns the entry for id if its storage TTL has not elapsed. Callers
// hold s.mu.
func (s *MemoryStore) alive(id string) *memoryEntry {
	entry, ok := s.entries[id]
	if !ok {
		return nil
	}
	if !entry.expiresAt.After(s.now().UTC()) {
		return nil
	}
	return entry
}
