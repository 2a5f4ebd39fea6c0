// Package speech turns audio into transcripts via Google Cloud
// Speech-to-Text.
package speech

import (
	"context"
	"fmt"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/logger"
)

type Transcriber struct {
	client *speech.Client
	log    *logger.Logger
}

var _ core.Transcriber = (*Transcriber)(nil)

func NewTranscriber(ctx context.Context, log *logger.Logger) (*Transcriber, error) {
	cl, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &Transcriber{client: cl, log: log.With("component", "speech")}, nil
}

func (t *Transcriber) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Transcribe recognizes one mono 16kHz PCM segment and returns its
// phrases in spoken order. Segments come pre-cut under the service's
// duration ceiling, so one long-running operation per segment is enough.
func (t *Transcriber) Transcribe(ctx context.Context, wav []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Minute)
	defer cancel()

	op, err := t.client.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            16000,
			AudioChannelCount:          1,
			LanguageCode:               "en-US",
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	})
	if err != nil {
		return nil, &core.ExtractionError{Stage: "transcribe", Err: err}
	}

	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, &core.ExtractionError{Stage: "transcribe-wait", Err: err}
	}

	var phrases []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if txt := alts[0].GetTranscript(); txt != "" {
			phrases = append(phrases, txt)
		}
	}
	t.log.Debug("segment transcribed", "phrases", len(phrases))
	return phrases, nil
}
