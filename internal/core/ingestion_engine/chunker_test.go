package ingestion_engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink collects every Save call for chunker assertions.
type memSink struct {
	estimate  int
	fileChunk [2]int
	units     []Unit
}

func (s *memSink) SetEstimate(ctx context.Context, total int) error {
	s.estimate = total
	return nil
}

func (s *memSink) SetFileChunk(ctx context.Context, current, total int) error {
	s.fileChunk = [2]int{current, total}
	return nil
}

func (s *memSink) Save(ctx context.Context, u Unit) error {
	s.units = append(s.units, u)
	return nil
}

func TestSplitWords(t *testing.T) {
	text := strings.Repeat("alpha ", 950)

	parts := splitWords(text, 400)
	require.Len(t, parts, 3)
	assert.Len(t, strings.Fields(parts[0]), 400)
	assert.Len(t, strings.Fields(parts[1]), 400)
	assert.Len(t, strings.Fields(parts[2]), 150)

	assert.Nil(t, splitWords("   ", 400))
	assert.Len(t, splitWords("one two three", 2), 2)
}

func TestMergeForward(t *testing.T) {
	small := "tiny fragment"
	big := strings.Repeat("word ", 200)

	merged := mergeForward([]string{small, big, big}, 120)
	require.Len(t, merged, 2)
	assert.True(t, strings.HasPrefix(merged[0], small), "small fragment folds into its successor")

	// A trailing short fragment survives on its own.
	merged = mergeForward([]string{big, small}, 120)
	require.Len(t, merged, 2)
	assert.Equal(t, small, merged[1])

	// Blank fragments disappear.
	merged = mergeForward([]string{"", big, "  "}, 120)
	assert.Len(t, merged, 1)

	// minWords 0 means no merging.
	in := []string{small, small}
	assert.Equal(t, in, mergeForward(in, 0))
}
