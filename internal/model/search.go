package model

// SearchResult is one scored chunk returned by the vector store.
type SearchResult struct {
	Score         float32 `json:"score"`
	ArticleID     string  `json:"article_id"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	URL           string  `json:"url"`
	Source        string  `json:"source"`
	PublishedDate string  `json:"published_date"`
	ChunkIndex    int     `json:"chunk_index"`
	TotalChunks   int     `json:"total_chunks"`
}

// Source is one cited article in a query answer, deduplicated by (title, url).
type Source struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	PublishedDate string `json:"published_date"`
}

// QueryResult is the full answer to one question.
type QueryResult struct {
	Answer          string   `json:"answer"`
	Sources         []Source `json:"sources"`
	Confidence      float32  `json:"confidence"`
	RetrievedChunks int      `json:"retrieved_chunks"`
}
