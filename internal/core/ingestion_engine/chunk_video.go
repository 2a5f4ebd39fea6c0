package ingestion_engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/markdave123-py/Docuchat/internal/core"
)

// VideoChunker submits the file to the external video indexer and
// polls until the job finishes, then merges the transcript and
// on-screen-text tracks into fixed-duration windows. A chunk's sequence
// number is the integer second its window starts at, which doubles as
// the citation offset for deep links into the player.
type VideoChunker struct {
	Indexer       core.VideoIndexer
	WindowSeconds int
	PollInterval  time.Duration
	MaxWait       time.Duration
}

func (c *VideoChunker) Chunk(ctx context.Context, path string, sink Sink) error {
	jobID, err := c.Indexer.Submit(ctx, path)
	if err != nil {
		return &core.ExtractionError{Stage: "video-submit", Err: err}
	}

	interval := c.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	maxWait := c.MaxWait
	if maxWait <= 0 {
		maxWait = 2 * time.Hour
	}
	deadline := time.Now().Add(maxWait)

	var result *core.VideoIndexResult
	for {
		res, err := c.Indexer.Poll(ctx, jobID)
		if err != nil {
			return &core.ExtractionError{Stage: "video-poll", Err: err}
		}
		if res.State == core.VideoJobFailed {
			return &core.ExtractionError{Stage: "video-index", Err: fmt.Errorf("indexing job %s failed", jobID)}
		}
		if res.State == core.VideoJobSucceeded {
			result = res
			break
		}
		if time.Now().After(deadline) {
			return &core.ExtractionError{Stage: "video-poll", Err: fmt.Errorf("indexing job %s did not finish within %s", jobID, maxWait)}
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	windows := mergeTracks(result.Transcript, result.OCR, c.WindowSeconds)
	if err := sink.SetEstimate(ctx, len(windows)); err != nil {
		return err
	}
	for _, w := range windows {
		if err := sink.Save(ctx, Unit{Seq: w.startSecond, Text: w.text}); err != nil {
			return err
		}
	}
	return nil
}

type videoWindow struct {
	startSecond int
	text        string
}

// mergeTracks interleaves both time-stamped tracks by start time and
// groups lines into windowSeconds-wide buckets. Empty buckets produce
// no window.
func mergeTracks(transcript, ocr []core.TimedText, windowSeconds int) []videoWindow {
	if windowSeconds <= 0 {
		windowSeconds = 30
	}
	lines := make([]core.TimedText, 0, len(transcript)+len(ocr))
	lines = append(lines, transcript...)
	lines = append(lines, ocr...)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].StartSeconds < lines[j].StartSeconds
	})

	var windows []videoWindow
	var buf []string
	current := -1
	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if current >= 0 && text != "" {
			windows = append(windows, videoWindow{startSecond: current, text: text})
		}
		buf = nil
	}
	for _, l := range lines {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		start := (int(l.StartSeconds) / windowSeconds) * windowSeconds
		if start != current {
			flush()
			current = start
		}
		buf = append(buf, l.Text)
	}
	flush()
	return windows
}
