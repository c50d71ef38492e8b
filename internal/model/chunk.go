package model

import "hash/fnv"

// Chunk is one overlapping word window of an article, the unit of retrieval.
// Derived deterministically from the article; regenerated on every re-index.
type Chunk struct {
	ArticleID   string `json:"article_id"`
	Index       int    `json:"chunk_index"`
	Text        string `json:"content"`
	TotalChunks int    `json:"total_chunks"`
}

// PointID returns the vector-store point id for a chunk. It is a pure
// function of (article id, chunk index) so repeated indexing of the same
// articles overwrites points in place instead of duplicating them.
func PointID(articleID string, chunkIndex int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(articleID))
	_, _ = h.Write([]byte{'_'})
	var buf [20]byte
	n := len(buf)
	i := chunkIndex
	if i == 0 {
		n--
		buf[n] = '0'
	}
	for i > 0 {
		n--
		buf[n] = byte('0' + i%10)
		i /= 10
	}
	_, _ = h.Write(buf[n:])
	// Qdrant accepts unsigned 64-bit ids but some clients treat them as
	// signed; keep the value in the positive int64 range.
	return h.Sum64() & 0x7FFFFFFFFFFFFFFF
}
