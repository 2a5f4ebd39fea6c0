// Package httpx holds the retry arithmetic shared by the embedding
// client and the video indexer polling loop.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusCoder is implemented by transport errors that carry an HTTP
// status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableStatus reports whether a status code is worth retrying.
// 401 and 404 are included because async job endpoints return them
// transiently while a job is being provisioned.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusNotFound, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code >= 500 && code <= 599
}

// IsRetryableError classifies transport-level errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return IsRetryableStatus(sc.HTTPStatusCode())
	}
	return false
}

// RetryAfter picks the sleep before the next attempt: the server's
// Retry-After header when present, otherwise fallback, capped at max.
func RetryAfter(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleep := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleep = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleep > max {
		sleep = max
	}
	return sleep
}

// Jitter spreads a backoff interval by +/-20% so synchronized callers
// do not hammer a recovering service in lockstep.
func Jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := 0.2 * base.Seconds()
	low := base.Seconds() - delta
	v := low + rand.Float64()*(2*delta)
	return time.Duration(v * float64(time.Second))
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
