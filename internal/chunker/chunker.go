package chunker

import (
	"errors"
	"strings"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultMinChars     = 50
)

// ErrStrideNonPositive is returned when size minus overlap is not positive;
// such a window would never advance.
var ErrStrideNonPositive = errors.New("chunk size must exceed overlap")

// Chunker splits text into overlapping windows of whitespace-delimited words.
// It holds only configuration and is safe for concurrent use.
type Chunker struct {
	size     int
	overlap  int
	minChars int
}

func New(size, overlap, minChars int) (*Chunker, error) {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultChunkOverlap
	}
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	if size-overlap <= 0 {
		return nil, ErrStrideNonPositive
	}
	return &Chunker{size: size, overlap: overlap, minChars: minChars}, nil
}

// Split returns the chunks of text. Window starts advance by size-overlap
// words; windows shorter than the minimum character threshold are treated as
// noise and dropped.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.size - c.overlap
	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if len(chunk) > c.minChars {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
