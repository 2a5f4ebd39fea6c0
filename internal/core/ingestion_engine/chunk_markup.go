package ingestion_engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/tmc/langchaingo/textsplitter"
)

// MarkupChunker handles HTML and Markdown. HTML is reduced to text
// first, then both go through a structure-aware splitter sized in
// characters, with small fragments merged into their successors.
type MarkupChunker struct {
	WordsPerChunk int
	MinChunkWords int
	CharsPerWord  int
}

func (c *MarkupChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	chunkChars := c.WordsPerChunk * c.CharsPerWord
	if chunkChars <= 0 {
		chunkChars = 2400
	}
	overlap := chunkChars / 10

	ext := strings.ToLower(filepath.Ext(path))
	var frags []string
	switch ext {
	case ".md", ".markdown":
		splitter := textsplitter.NewMarkdownTextSplitter(
			textsplitter.WithChunkSize(chunkChars),
			textsplitter.WithChunkOverlap(overlap),
		)
		frags, err = splitter.SplitText(string(data))
	default:
		text, terr := html2text.FromString(string(data), html2text.Options{TextOnly: true})
		if terr != nil {
			return terr
		}
		splitter := textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkChars),
			textsplitter.WithChunkOverlap(overlap),
		)
		frags, err = splitter.SplitText(text)
	}
	if err != nil {
		return err
	}

	frags = mergeForward(frags, c.MinChunkWords)
	if err := sink.SetEstimate(ctx, len(frags)); err != nil {
		return err
	}
	for seq, text := range frags {
		if err := sink.Save(ctx, Unit{Seq: seq, Text: text}); err != nil {
			return err
		}
	}
	return nil
}
