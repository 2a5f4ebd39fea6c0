package ingestion_engine

import (
	"context"
	"os"
	"strings"
)

// TextChunker handles plain-text formats (.txt, .log, .text). Chunks
// are fixed word-count windows with no overlap.
type TextChunker struct {
	WordsPerChunk int
}

func (c *TextChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	parts := splitWords(string(data), c.WordsPerChunk)
	if err := sink.SetEstimate(ctx, len(parts)); err != nil {
		return err
	}
	for seq, text := range parts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := sink.Save(ctx, Unit{Seq: seq, Text: text}); err != nil {
			return err
		}
	}
	return nil
}
