package core

import (
	"context"
	"io"
)

// Page is one page or slide of extracted text.
type Page struct {
	Number int
	Text   string
}

// DocumentExtractor converts a raw office/PDF/image file on disk into
// page-delimited plain text.
type DocumentExtractor interface {
	Analyze(ctx context.Context, path string, mimeType string) ([]Page, error)
}

// Transcriber converts one mono PCM audio segment into ordered phrases.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) ([]string, error)
}

// TimedText is one time-stamped line from a video transcript or
// on-screen-text track.
type TimedText struct {
	StartSeconds float64
	Text         string
}

// VideoJobState is the coarse state reported by the video indexer.
type VideoJobState string

const (
	VideoJobProcessing VideoJobState = "Processing"
	VideoJobSucceeded  VideoJobState = "Succeeded"
	VideoJobFailed     VideoJobState = "Failed"
)

// VideoIndexResult is a polled snapshot of an indexing job.
type VideoIndexResult struct {
	Progress   int
	State      VideoJobState
	Transcript []TimedText
	OCR        []TimedText
}

// VideoIndexer submits a video for indexing and polls the job until the
// transcript and OCR tracks are available.
type VideoIndexer interface {
	Submit(ctx context.Context, path string) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (*VideoIndexResult, error)
}

// ObjectClient is the durable blob store used for enhanced citations.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
