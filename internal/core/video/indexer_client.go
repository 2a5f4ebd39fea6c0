// Package video talks to the external video indexing service that
// produces time-stamped transcript and on-screen-text tracks.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/httpx"
	"github.com/markdave123-py/Docuchat/internal/logger"
)

type IndexerClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	log        *logger.Logger
}

var _ core.VideoIndexer = (*IndexerClient)(nil)

func NewIndexerClient(endpoint, apiKey string, log *logger.Logger) (*IndexerClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("video indexer endpoint not set")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid video indexer endpoint: %w", err)
	}
	return &IndexerClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		maxRetries: 6,
		log:        log.With("component", "video-indexer"),
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("video indexer: status %d: %s", e.StatusCode, e.Body)
}
func (e *httpError) HTTPStatusCode() int { return e.StatusCode }

type submitResponse struct {
	ID string `json:"id"`
}

type timedLine struct {
	StartSeconds float64 `json:"start_seconds"`
	Text         string  `json:"text"`
}

type pollResponse struct {
	Progress   int         `json:"progress"`
	State      string      `json:"state"`
	Transcript []timedLine `json:"transcript"`
	OCR        []timedLine `json:"ocr"`
}

// Submit streams the video file to the indexer and returns the job id.
func (c *IndexerClient) Submit(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &core.ExtractionError{Stage: "video-open", Err: err}
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/videos", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &core.ExtractionError{Stage: "video-submit", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &core.ExtractionError{Stage: "video-submit", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &core.ExtractionError{Stage: "video-submit", Err: &httpError{StatusCode: resp.StatusCode, Body: string(raw)}}
	}

	var sub submitResponse
	if err := json.Unmarshal(raw, &sub); err != nil {
		return "", &core.ExtractionError{Stage: "video-submit", Err: err}
	}
	if sub.ID == "" {
		return "", &core.ExtractionError{Stage: "video-submit", Err: fmt.Errorf("indexer returned no job id")}
	}
	return sub.ID, nil
}

// Poll fetches one snapshot of the indexing job. Transient 401/404/429
// and gateway errors are retried with capped backoff before giving up;
// the caller loops on the returned state until Succeeded or Failed and
// owns the overall wall-clock budget via ctx.
func (c *IndexerClient) Poll(ctx context.Context, jobID string) (*core.VideoIndexResult, error) {
	backoff := 2 * time.Second

	for attempt := 0; ; attempt++ {
		snap, resp, err := c.pollOnce(ctx, jobID)
		if err == nil {
			return snap, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, &core.ExtractionError{Stage: "video-poll", Err: err}
		}

		sleepFor := httpx.Jitter(httpx.RetryAfter(resp, backoff, 30*time.Second))
		c.log.Warn("video poll retrying",
			"job_id", jobID, "attempt", attempt+1, "sleep", sleepFor.String(), "error", err.Error())
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return nil, &core.ExtractionError{Stage: "video-poll", Err: err}
		}
		backoff *= 2
	}
}

func (c *IndexerClient) pollOnce(ctx context.Context, jobID string) (*core.VideoIndexResult, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/videos/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var pr pollResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, resp, err
	}

	out := &core.VideoIndexResult{
		Progress: pr.Progress,
		State:    core.VideoJobState(pr.State),
	}
	for _, l := range pr.Transcript {
		out.Transcript = append(out.Transcript, core.TimedText{StartSeconds: l.StartSeconds, Text: l.Text})
	}
	for _, l := range pr.OCR {
		out.OCR = append(out.OCR, core.TimedText{StartSeconds: l.StartSeconds, Text: l.Text})
	}
	return out, resp, nil
}
