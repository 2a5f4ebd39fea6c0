package ingestion_engine

import (
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/core/speech"
)

// AudioChunker transcribes audio files. The source is cut into short
// mono WAV segments so each transcription request stays under the
// provider's duration limit; segments transcribe concurrently and the
// full transcript is re-chunked by word count, since segment boundaries
// carry no meaning to a reader.
type AudioChunker struct {
	Transcriber    core.Transcriber
	SegmentSeconds int
	WordsPerChunk  int
	TempDir        string
}

const transcribeConcurrency = 3

func (c *AudioChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	outDir, err := os.MkdirTemp(c.TempDir, "audioseg-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(outDir)

	segments, err := speech.SegmentAudio(ctx, path, outDir, c.SegmentSeconds)
	if err != nil {
		return err
	}
	defer speech.RemoveSegments(segments)

	if err := sink.SetFileChunk(ctx, 0, len(segments)); err != nil {
		return err
	}

	results := make([][]string, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transcribeConcurrency)
	for idx, seg := range segments {
		g.Go(func() error {
			wav, err := os.ReadFile(seg)
			if err != nil {
				return err
			}
			phrases, err := c.Transcriber.Transcribe(gctx, wav)
			if err != nil {
				return &core.ExtractionError{Stage: "transcribe", Err: err}
			}
			results[idx] = phrases
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := sink.SetFileChunk(ctx, len(segments), len(segments)); err != nil {
		return err
	}

	var phrases []string
	for _, part := range results {
		phrases = append(phrases, part...)
	}

	chunks := splitWords(strings.Join(phrases, " "), c.WordsPerChunk)
	if err := sink.SetEstimate(ctx, len(chunks)); err != nil {
		return err
	}
	for seq, text := range chunks {
		if err := sink.Save(ctx, Unit{Seq: seq, Text: text}); err != nil {
			return err
		}
	}
	return nil
}
