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

func TestPackRowsRepeatsHeader(t *testing.T) {
	rows := [][]string{
		{"id", "name", "city"},
		{"1", "Ada", "London"},
		{"2", "Grace", "Arlington"},
		{"3", "Edsger", "Rotterdam"},
	}

	chunks := packRows(rows, 40)
	require.True(t, len(chunks) > 1, "budget forces multiple chunks")

	var seen []string
	for _, c := range chunks {
		lines := strings.Split(c, "\n")
		assert.Equal(t, "id, name, city", lines[0])
		seen = append(seen, lines[1:]...)
	}
	// Row order is preserved across chunks.
	assert.Equal(t, []string{"1, Ada, London", "2, Grace, Arlington", "3, Edsger, Rotterdam"}, seen)
}

func TestPackRowsEdgeCases(t *testing.T) {
	assert.Nil(t, packRows(nil, 100))

	// Header-only file emits the header once.
	chunks := packRows([][]string{{"a", "b"}}, 100)
	assert.Equal(t, []string{"a, b"}, chunks)

	// A row larger than the budget still emits whole.
	huge := strings.Repeat("x", 500)
	chunks = packRows([][]string{{"h"}, {huge}}, 100)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], huge)
}

func TestTabularChunkerCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	var b strings.Builder
	b.WriteString("id,name\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%d,person-%d\n", i, i)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	sink := &memSink{}
	c := &TabularChunker{ChunkChars: 200}
	require.NoError(t, c.Chunk(context.Background(), path, sink))

	require.NotEmpty(t, sink.units)
	assert.Equal(t, len(sink.units), sink.estimate)
	for i, u := range sink.units {
		assert.Equal(t, i, u.Seq)
		assert.True(t, strings.HasPrefix(u.Text, "id, name\n"), "chunk %d misses header", i)
		assert.Empty(t, u.FileSuffix)
	}
	// Every data row appears exactly once overall.
	joined := strings.Join(collectTexts(sink.units), "\n")
	assert.Equal(t, 1, strings.Count(joined, "\n49, person-49"))
}

func TestTabularChunkerTSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	content := "col1\tcol2\nv1\tv2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sink := &memSink{}
	c := &TabularChunker{ChunkChars: 2400}
	require.NoError(t, c.Chunk(context.Background(), path, sink))

	require.Len(t, sink.units, 1)
	assert.Equal(t, "col1, col2\nv1, v2", sink.units[0].Text)
}

func collectTexts(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}
