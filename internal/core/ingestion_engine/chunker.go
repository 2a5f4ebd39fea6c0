package ingestion_engine

import (
	"context"
	"strings"
)

// Unit is one chunk emitted by a chunker. Seq is the ordering key and
// pseudo page number; video chunkers use the integer second offset of
// their window. FileSuffix augments the effective file name for
// sub-sources such as spreadsheet sheets.
type Unit struct {
	Seq        int
	Text       string
	FileSuffix string
}

// Sink receives chunks as they are produced. Save persists the unit
// immediately (embed, index, progress update) so a chunker never
// buffers the whole document. SetEstimate revises the expected total;
// SetFileChunk reports progress across physical sub-files when the
// source itself was split.
type Sink interface {
	SetEstimate(ctx context.Context, total int) error
	SetFileChunk(ctx context.Context, current, total int) error
	Save(ctx context.Context, u Unit) error
}

// Chunker turns one local file into an ordered stream of units. The
// stream is finite and consumed exactly once.
type Chunker interface {
	Chunk(ctx context.Context, path string, sink Sink) error
}

// Format families, used to pick the zero-chunk terminal status.
type family int

const (
	familyText family = iota
	familyMarkup
	familyStructured
	familyTabular
	familyDocument
	familyAudio
	familyVideo
)

type registration struct {
	chunker Chunker
	family  family
}

// chunkerFor resolves the registered chunker for a file extension
// (lowercase, including the dot).
func (i *DocumentIngestor) chunkerFor(ext string) (registration, bool) {
	reg, ok := i.registry[strings.ToLower(ext)]
	return reg, ok
}

// splitWords cuts text into chunks of at most wordsPerChunk words with
// no overlap. Shared by the plain-text and audio chunkers.
func splitWords(text string, wordsPerChunk int) []string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = 400
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, len(words)/wordsPerChunk+1)
	for start := 0; start < len(words); start += wordsPerChunk {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}
	return out
}

// mergeForward folds fragments smaller than minWords into their
// successors so the index is not littered with tiny, low-value chunks.
// The final fragment may stay short.
func mergeForward(frags []string, minWords int) []string {
	if minWords <= 0 || len(frags) == 0 {
		return frags
	}
	var out []string
	var carry string
	for _, f := range frags {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if carry != "" {
			f = carry + "\n" + f
			carry = ""
		}
		if len(strings.Fields(f)) < minWords {
			carry = f
			continue
		}
		out = append(out, f)
	}
	if carry != "" {
		out = append(out, carry)
	}
	return out
}
