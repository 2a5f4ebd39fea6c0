package ingestion_engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkupChunkerHTMLStripsTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	html := "<html><body><h1>Release Notes</h1><p>" + strings.Repeat("change ", 300) + "</p></body></html>"
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	sink := &memSink{}
	c := &MarkupChunker{WordsPerChunk: 100, MinChunkWords: 20, CharsPerWord: 6}

	require.NoError(t, c.Chunk(context.Background(), path, sink))
	require.NotEmpty(t, sink.units)
	for _, u := range sink.units {
		assert.NotContains(t, u.Text, "<p>")
		assert.NotContains(t, u.Text, "<h1>")
	}
}

func TestMarkupChunkerMarkdownSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "# Section %d\n\n%s\n\n", i, strings.Repeat("content ", 150))
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	sink := &memSink{}
	c := &MarkupChunker{WordsPerChunk: 100, MinChunkWords: 20, CharsPerWord: 6}

	require.NoError(t, c.Chunk(context.Background(), path, sink))
	assert.True(t, len(sink.units) > 1)
	assert.Equal(t, len(sink.units), sink.estimate)
	for i, u := range sink.units {
		assert.Equal(t, i, u.Seq)
	}
}

func TestTextChunkerFixedWindows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("alpha ", 950)), 0o644))

	sink := &memSink{}
	c := &TextChunker{WordsPerChunk: 400}

	require.NoError(t, c.Chunk(context.Background(), path, sink))
	require.Len(t, sink.units, 3)
	assert.Equal(t, 3, sink.estimate)
	assert.Len(t, strings.Fields(sink.units[0].Text), 400)
	assert.Len(t, strings.Fields(sink.units[2].Text), 150)
}
