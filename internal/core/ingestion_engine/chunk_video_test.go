package ingestion_engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Docuchat/internal/core"
)

type fakeIndexer struct {
	polls   int
	pending int
	result  *core.VideoIndexResult
	failed  bool
}

func (f *fakeIndexer) Submit(ctx context.Context, path string) (string, error) {
	return "job-1", nil
}

func (f *fakeIndexer) Poll(ctx context.Context, jobID string) (*core.VideoIndexResult, error) {
	f.polls++
	if f.failed {
		return &core.VideoIndexResult{State: core.VideoJobFailed}, nil
	}
	if f.polls <= f.pending {
		return &core.VideoIndexResult{State: core.VideoJobProcessing, Progress: 50}, nil
	}
	return f.result, nil
}

func TestMergeTracksWindows(t *testing.T) {
	transcript := []core.TimedText{
		{StartSeconds: 2, Text: "hello there"},
		{StartSeconds: 31, Text: "second window speech"},
		{StartSeconds: 65, Text: "third window speech"},
	}
	ocr := []core.TimedText{
		{StartSeconds: 4, Text: "TITLE SLIDE"},
		{StartSeconds: 33, Text: "AGENDA"},
	}

	windows := mergeTracks(transcript, ocr, 30)
	require.Len(t, windows, 3)

	assert.Equal(t, 0, windows[0].startSecond)
	assert.Contains(t, windows[0].text, "hello there")
	assert.Contains(t, windows[0].text, "TITLE SLIDE")

	assert.Equal(t, 30, windows[1].startSecond)
	assert.Contains(t, windows[1].text, "second window speech")
	assert.Contains(t, windows[1].text, "AGENDA")

	assert.Equal(t, 60, windows[2].startSecond)
}

func TestMergeTracksSkipsEmptyWindows(t *testing.T) {
	transcript := []core.TimedText{
		{StartSeconds: 5, Text: "start"},
		{StartSeconds: 125, Text: "much later"},
	}
	windows := mergeTracks(transcript, nil, 30)
	require.Len(t, windows, 2)
	assert.Equal(t, 0, windows[0].startSecond)
	assert.Equal(t, 120, windows[1].startSecond)
}

func TestVideoChunkerPollsUntilSucceeded(t *testing.T) {
	idx := &fakeIndexer{
		pending: 2,
		result: &core.VideoIndexResult{
			State: core.VideoJobSucceeded,
			Transcript: []core.TimedText{
				{StartSeconds: 1, Text: "welcome everyone"},
				{StartSeconds: 45, Text: "next topic"},
			},
		},
	}
	sink := &memSink{}
	c := &VideoChunker{Indexer: idx, WindowSeconds: 30, PollInterval: time.Millisecond, MaxWait: time.Second}

	require.NoError(t, c.Chunk(context.Background(), "talk.mp4", sink))
	assert.Equal(t, 3, idx.polls)
	require.Len(t, sink.units, 2)
	// Sequence numbers are the window start seconds.
	assert.Equal(t, 0, sink.units[0].Seq)
	assert.Equal(t, 30, sink.units[1].Seq)
}

func TestVideoChunkerFailedJobIsTerminal(t *testing.T) {
	idx := &fakeIndexer{failed: true}
	sink := &memSink{}
	c := &VideoChunker{Indexer: idx, WindowSeconds: 30, PollInterval: time.Millisecond, MaxWait: time.Second}

	err := c.Chunk(context.Background(), "talk.mp4", sink)
	var eErr *core.ExtractionError
	require.ErrorAs(t, err, &eErr)
	assert.Equal(t, 1, idx.polls, "a failed job is never re-polled")
	assert.Empty(t, sink.units)
}
