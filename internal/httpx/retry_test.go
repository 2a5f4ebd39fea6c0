package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return "status error" }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{401, 404, 408, 429, 500, 502, 503, 504} {
		assert.True(t, IsRetryableStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 201, 204, 400, 403, 409, 410, 415} {
		assert.False(t, IsRetryableStatus(code), "code %d", code)
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(errors.New("plain")))
	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.True(t, IsRetryableError(&statusErr{code: 429}))
	assert.False(t, IsRetryableError(&statusErr{code: 400}))
}

func TestRetryAfterHonorsHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, RetryAfter(resp, time.Second, time.Minute))

	// The cap wins over a huge server value.
	resp.Header.Set("Retry-After", "600")
	assert.Equal(t, 30*time.Second, RetryAfter(resp, time.Second, 30*time.Second))

	// Missing or junk headers fall back.
	resp.Header.Set("Retry-After", "soon")
	assert.Equal(t, time.Second, RetryAfter(resp, time.Second, time.Minute))
	assert.Equal(t, 2*time.Second, RetryAfter(nil, 2*time.Second, time.Minute))
}

func TestJitterStaysNearBase(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 100; i++ {
		j := Jitter(base)
		assert.GreaterOrEqual(t, j, 8*time.Second)
		assert.LessOrEqual(t, j, 12*time.Second)
	}
	assert.Equal(t, time.Duration(0), Jitter(0))
}

func TestSleepCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, Sleep(context.Background(), time.Millisecond))
}
