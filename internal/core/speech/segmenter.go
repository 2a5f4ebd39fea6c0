package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/markdave123-py/Docuchat/internal/core"
)

// SegmentAudio cuts the source media into fixed-duration mono 16kHz
// PCM WAV segments with ffmpeg and returns their paths in order. The
// caller owns cleanup of the returned files.
func SegmentAudio(ctx context.Context, srcPath, outDir string, segmentSeconds int) ([]string, error) {
	if segmentSeconds <= 0 {
		segmentSeconds = 540
	}
	pattern := filepath.Join(outDir, "segment_%03d.wav")

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", srcPath,
		"-f", "segment",
		"-segment_time", fmt.Sprintf("%d", segmentSeconds),
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		pattern,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &core.ExtractionError{
			Stage: "segment",
			Err:   fmt.Errorf("ffmpeg: %w (%s)", err, string(out)),
		}
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "segment_*.wav"))
	if err != nil {
		return nil, &core.ExtractionError{Stage: "segment-glob", Err: err}
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, &core.ExtractionError{Stage: "segment", Err: fmt.Errorf("no segments produced for %s", srcPath)}
	}
	return matches, nil
}

// RemoveSegments deletes segment files, ignoring individual failures.
func RemoveSegments(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
