package ingestion_engine

import (
	"fmt"

	"github.com/markdave123-py/Docuchat/internal/models"
)

// Phase is the enumerated ingestion state. Each phase carries its own
// percentage so progress is computed once at the transition point
// instead of being re-parsed from status text.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseSending
	PhaseSavingChunk
	PhaseExtractingMetadata
	PhaseComplete
	PhaseCompleteNoText
	PhaseFailed
)

// Terminal phases force their percentage; everything else is clamped
// monotone and capped at 99 by the store.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseCompleteNoText
}

// Percentage maps a phase to its progress value. For PhaseSavingChunk,
// k is the chunk being saved and n the current estimate of the total;
// an unknown total (n <= 0) stays at the post-analysis floor of 5.
// PhaseFailed has no percentage of its own: failures freeze whatever
// was last recorded.
func (p Phase) Percentage(k, n int) (float64, bool) {
	switch p {
	case PhaseQueued:
		return 0, true
	case PhaseSending:
		return 5, true
	case PhaseSavingChunk:
		if n <= 0 {
			return 5, true
		}
		if k > n {
			k = n
		}
		return 5 + 80*float64(k)/float64(n), true
	case PhaseExtractingMetadata:
		return 95, true
	case PhaseComplete, PhaseCompleteNoText:
		return 100, true
	default:
		return 0, false
	}
}

// Status renders the user-visible progress label for a phase.
func (p Phase) Status(k, n int) string {
	switch p {
	case PhaseQueued:
		return "Queued for processing"
	case PhaseSending:
		return "Sending for analysis"
	case PhaseSavingChunk:
		if n > 0 {
			return fmt.Sprintf("Saving chunk %d of %d", k, n)
		}
		return fmt.Sprintf("Saving chunk %d", k)
	case PhaseExtractingMetadata:
		return "Extracting final metadata"
	case PhaseComplete:
		return "Processing complete"
	case PhaseCompleteNoText:
		return "Processing complete. No readable text found"
	default:
		return ""
	}
}

const maxErrorStatusLen = 256

// FailureStatus renders the frozen Error: status for a failed
// ingestion, truncated so the record stays readable.
func FailureStatus(err error) string {
	msg := "Error: " + err.Error()
	if len(msg) > maxErrorStatusLen {
		msg = msg[:maxErrorStatusLen]
	}
	return msg
}

// transition builds the partial update for a phase change. The saving
// phase also bumps the chunk counter and revises the page estimate.
func transition(p Phase, k, n int) *models.DocumentUpdate {
	status := p.Status(k, n)
	upd := &models.DocumentUpdate{Status: &status}
	if pct, ok := p.Percentage(k, n); ok {
		upd.Percent = &pct
		upd.ForcePercent = p.Terminal()
	}
	return upd
}
