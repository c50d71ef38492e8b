package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%04d", i)
	}
	return strings.Join(parts, " ")
}

func TestNewRejectsNonPositiveStride(t *testing.T) {
	_, err := New(10, 10, 1)
	require.ErrorIs(t, err, ErrStrideNonPositive)

	_, err = New(10, 15, 1)
	require.ErrorIs(t, err, ErrStrideNonPositive)
}

func TestSplitWindowOffsets(t *testing.T) {
	c, err := New(10, 4, 1)
	require.NoError(t, err)

	chunks := c.Split(words(25))
	// stride 6: windows start at word 0, 6, 12, 18, 24
	require.Len(t, chunks, 5)
	require.True(t, strings.HasPrefix(chunks[0], "word0000"))
	require.True(t, strings.HasPrefix(chunks[1], "word0006"))
	require.True(t, strings.HasPrefix(chunks[2], "word0012"))
	require.True(t, strings.HasPrefix(chunks[3], "word0018"))
	require.True(t, strings.HasPrefix(chunks[4], "word0024"))
}

func TestSplitCoversEveryWord(t *testing.T) {
	c, err := New(7, 2, 1)
	require.NoError(t, err)

	n := 53
	chunks := c.Split(words(n))
	seen := map[string]bool{}
	for _, chunk := range chunks {
		for _, w := range strings.Fields(chunk) {
			seen[w] = true
		}
	}
	for i := 0; i < n; i++ {
		require.True(t, seen[fmt.Sprintf("word%04d", i)], "word %d not covered", i)
	}
}

func TestSplitDropsShortTrailingChunk(t *testing.T) {
	c, err := New(4, 0, 40)
	require.NoError(t, err)

	// The trailing window is a single short word, below the character
	// threshold.
	chunks := c.Split("alphabetical bravissimo charlatans deltafoxtrot x")
	require.Len(t, chunks, 1)
	require.Equal(t, "alphabetical bravissimo charlatans deltafoxtrot", chunks[0])
}

func TestSplitEmptyInput(t *testing.T) {
	c, err := New(10, 2, 50)
	require.NoError(t, err)
	require.Empty(t, c.Split(""))
	require.Empty(t, c.Split("   \n\t "))
}
