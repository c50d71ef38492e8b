package vectorstore

import (
	"context"
	"errors"

	"newsrag/internal/model"
)

// ErrDimensionMismatch means an existing collection was created with a
// different vector size than the configured embedder produces. Startup must
// halt on it; continuing would corrupt search results silently.
var ErrDimensionMismatch = errors.New("collection dimension mismatch")

// Point is one chunk vector plus its payload, keyed by a deterministic id so
// upserts overwrite instead of duplicating.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload model.SearchResult
}

// Store is a vector index over article chunks.
//
// Upsert applies points in fixed-size batches, in order; the whole call is
// not atomic across batches. A crash mid-upsert leaves a partially indexed
// article set, which is safe because ids are deterministic and the upsert can
// be retried wholesale.
//
// Search returns at most limit results in descending score order; ties are
// returned in an unspecified order.
//
// Ping checks reachability without mutating anything, unlike
// EnsureCollection, which may create the collection.
type Store interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, limit int) ([]model.SearchResult, error)
	Ping(ctx context.Context) error
}
