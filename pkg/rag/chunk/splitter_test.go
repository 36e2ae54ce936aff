package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_WindowingWithOverlap(t *testing.T) {
	chunks := Split("ABCDEFGHIJ", 4, 1)
	assert.Equal(t, []string{"ABCD", "DEFG", "GHIJ"}, chunks)
}

func TestSplit_EmptyInput(t *testing.T) {
	assert.Nil(t, Split("", 800, 100))
	assert.Nil(t, Split("   \n\t  ", 800, 100))
	// Control characters only is effectively empty
	assert.Nil(t, Split("\x00\x01\x02", 800, 100))
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := Split("short note", 800, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short note", chunks[0])
}

func TestSplit_StripsControlCharacters(t *testing.T) {
	chunks := Split("hello\x00world\x07 again", 800, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "helloworld again", chunks[0])
}

func TestSplit_OverlapClampedBelowSize(t *testing.T) {
	// overlap >= size must still make forward progress
	chunks := Split("ABCDEFGHIJ", 4, 4)
	require.NotEmpty(t, chunks)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 4)
		total += len(c)
	}
	assert.Equal(t, "ABCD", chunks[0])
}

func TestSplit_ReassemblesOriginalText(t *testing.T) {
	original := strings.Repeat("patient record content ", 200)
	size, overlap := 100, 20
	chunks := Split(original, size, overlap)
	require.Greater(t, len(chunks), 1)

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		runes := []rune(c)
		if len(runes) > overlap {
			rebuilt.WriteString(string(runes[overlap:]))
		}
	}
	assert.Equal(t, original, rebuilt.String())
}

func TestSplit_UnicodeAware(t *testing.T) {
	chunks := Split("héllo wörld with ünïcode", 10, 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 10)
	}
}
