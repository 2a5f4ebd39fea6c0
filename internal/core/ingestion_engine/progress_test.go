package ingestion_engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhasePercentage(t *testing.T) {
	tests := []struct {
		name  string
		phase Phase
		k, n  int
		want  float64
	}{
		{"queued", PhaseQueued, 0, 0, 0},
		{"sending", PhaseSending, 0, 0, 5},
		{"saving unknown total", PhaseSavingChunk, 3, 0, 5},
		{"saving first of ten", PhaseSavingChunk, 1, 10, 13},
		{"saving half", PhaseSavingChunk, 5, 10, 45},
		{"saving last", PhaseSavingChunk, 10, 10, 85},
		{"saving beyond estimate clamps", PhaseSavingChunk, 12, 10, 85},
		{"metadata", PhaseExtractingMetadata, 0, 0, 95},
		{"complete", PhaseComplete, 0, 0, 100},
		{"complete no text", PhaseCompleteNoText, 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.phase.Percentage(tt.k, tt.n)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}

	_, ok := PhaseFailed.Percentage(0, 0)
	assert.False(t, ok, "failed phase has no percentage of its own")
}

func TestPhaseStatus(t *testing.T) {
	assert.Equal(t, "Queued for processing", PhaseQueued.Status(0, 0))
	assert.Equal(t, "Sending for analysis", PhaseSending.Status(0, 0))
	assert.Equal(t, "Saving chunk 3 of 7", PhaseSavingChunk.Status(3, 7))
	assert.Equal(t, "Saving chunk 3", PhaseSavingChunk.Status(3, 0))
	assert.Equal(t, "Extracting final metadata", PhaseExtractingMetadata.Status(0, 0))
	assert.Equal(t, "Processing complete", PhaseComplete.Status(0, 0))
	assert.Equal(t, "Processing complete. No readable text found", PhaseCompleteNoText.Status(0, 0))
}

func TestOnlyTerminalPhasesForcePercent(t *testing.T) {
	assert.True(t, PhaseComplete.Terminal())
	assert.True(t, PhaseCompleteNoText.Terminal())
	assert.False(t, PhaseSavingChunk.Terminal())
	assert.False(t, PhaseFailed.Terminal())

	upd := transition(PhaseSavingChunk, 2, 4)
	require.NotNil(t, upd.Percent)
	assert.False(t, upd.ForcePercent)

	upd = transition(PhaseComplete, 0, 0)
	require.NotNil(t, upd.Percent)
	assert.True(t, upd.ForcePercent)
}

func TestFailureStatus(t *testing.T) {
	s := FailureStatus(errors.New("boom"))
	assert.Equal(t, "Error: boom", s)

	long := FailureStatus(errors.New(strings.Repeat("x", 1000)))
	assert.Len(t, long, maxErrorStatusLen)
	assert.True(t, strings.HasPrefix(long, "Error: "))
}
