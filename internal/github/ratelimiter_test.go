package github

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_updateFromHeaders(t *testing.T) {
	rl := NewRateLimiter(100, 1)
	reset := time.Now().Add(time.Minute).Unix()

	headers := http.Header{}
	headers.Set("X-RateLimit-Remaining", "42")
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
	headers.Set("Retry-After", "3")
	rl.updateFromHeaders(headers)

	assert.Equal(t, 42, rl.Remaining())
	assert.Equal(t, reset, rl.reset.Unix())
	assert.Equal(t, 3*time.Second, rl.retryAfter)
}

func TestRateLimiter_MiddlewareRetriesOn429(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rl := NewRateLimiter(100, 5)
	client := &http.Client{Transport: rl.Middleware(http.DefaultTransport)}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 4999, rl.Remaining())
}
