package ingestion_engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJSONChunkerSmallDocumentIsOneChunk(t *testing.T) {
	path := writeJSONFile(t, `{"title":"report","year":2024}`)

	sink := &memSink{}
	c := &JSONChunker{ChunkChars: 2400}
	require.NoError(t, c.Chunk(context.Background(), path, sink))

	require.Len(t, sink.units, 1)
	assert.JSONEq(t, `{"title":"report","year":2024}`, sink.units[0].Text)
}

func TestJSONChunkerSplitsOnElementBoundaries(t *testing.T) {
	var items []string
	for i := 0; i < 40; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"note":"entry number %d"}`, i, i))
	}
	path := writeJSONFile(t, "["+strings.Join(items, ",")+"]")

	sink := &memSink{}
	c := &JSONChunker{ChunkChars: 200}
	require.NoError(t, c.Chunk(context.Background(), path, sink))

	require.True(t, len(sink.units) > 1)
	for _, u := range sink.units {
		// Every chunk is itself valid JSON, never a cut fragment.
		var v any
		assert.NoError(t, json.Unmarshal([]byte(u.Text), &v), "chunk %q", u.Text)
	}
}

func TestJSONChunkerDropsTrivialFragments(t *testing.T) {
	path := writeJSONFile(t, `{}`)

	sink := &memSink{}
	c := &JSONChunker{ChunkChars: 2400}
	require.NoError(t, c.Chunk(context.Background(), path, sink))
	assert.Empty(t, sink.units)
}

func TestJSONChunkerInvalidFallsBackToWords(t *testing.T) {
	path := writeJSONFile(t, "this is not json at all "+strings.Repeat("filler ", 50))

	sink := &memSink{}
	c := &JSONChunker{ChunkChars: 2400, WordsPerChunk: 20}
	require.NoError(t, c.Chunk(context.Background(), path, sink))
	assert.True(t, len(sink.units) >= 2)
}

func TestSplitJSONValueObjectOrderIsDeterministic(t *testing.T) {
	obj := make(map[string]any, 40)
	for i := 0; i < 40; i++ {
		obj[fmt.Sprintf("key%02d", i)] = fmt.Sprintf("value-%d", i)
	}

	first := splitJSONValue(obj, 30)
	require.NotEmpty(t, first)
	for run := 0; run < 10; run++ {
		assert.Equal(t, first, splitJSONValue(obj, 30), "run %d", run)
	}

	// Fragments come out in key order, not map order.
	assert.Contains(t, first[0], `"key00"`)
	assert.Contains(t, first[len(first)-1], `"key39"`)
}

func TestTrivialJSON(t *testing.T) {
	assert.True(t, trivialJSON("{}"))
	assert.True(t, trivialJSON(" [] "))
	assert.True(t, trivialJSON(`""`))
	assert.True(t, trivialJSON("null"))
	assert.False(t, trivialJSON(`{"a":1}`))
}
