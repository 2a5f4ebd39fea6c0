package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "doc-1_0", ChunkKey("doc-1", 0))
	assert.Equal(t, "doc-1_17", ChunkKey("doc-1", 17))

	// Same inputs always derive the same key.
	assert.Equal(t, ChunkKey("abc", 3), ChunkKey("abc", 3))

	// Video windows use their start second as the sequence.
	assert.Equal(t, "vid_90", ChunkKey("vid", 90))
}
