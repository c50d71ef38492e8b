package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"newsrag/internal/model"
)

// Memory is a brute-force cosine-similarity store used in tests and when no
// qdrant endpoint is reachable. Points live in a map keyed by id, so upserts
// overwrite like the real store.
type Memory struct {
	mu        sync.RWMutex
	dimension int
	points    map[uint64]Point
}

func NewMemory(dimension int) *Memory {
	return &Memory{
		dimension: dimension,
		points:    make(map[uint64]Point),
	}
}

func (m *Memory) EnsureCollection(_ context.Context) error {
	if m.dimension <= 0 {
		return fmt.Errorf("invalid dimension %d: %w", m.dimension, ErrDimensionMismatch)
	}
	return nil
}

func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		if len(p.Vector) != m.dimension {
			return fmt.Errorf("point %d has %d dims, store expects %d: %w",
				p.ID, len(p.Vector), m.dimension, ErrDimensionMismatch)
		}
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, vector []float32, limit int) ([]model.SearchResult, error) {
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("query vector has %d dims, store expects %d: %w",
			len(vector), m.dimension, ErrDimensionMismatch)
	}
	if limit <= 0 {
		limit = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]model.SearchResult, 0, len(m.points))
	for _, p := range m.points {
		item := p.Payload
		item.Score = cosine(vector, p.Vector)
		results = append(results, item)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

// Len reports the number of stored points.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
