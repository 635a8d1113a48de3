package github

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
	"golang.org/x/time/rate"
)

// * RateLimiter paces outgoing GitHub calls and honours the rate limit headers GitHub returns
type RateLimiter struct {
	mu          sync.Mutex
	pacer       *rate.Limiter
	remaining   int
	reset       time.Time
	lowWarn     int
	retryAfter  time.Duration
	retryStatus int
}

// NewRateLimiter allows perSecond requests with the given burst before GitHub's own
// budget comes into play.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		pacer:       rate.NewLimiter(rate.Limit(perSecond), burst),
		remaining:   5000,
		reset:       time.Now(),
		lowWarn:     100,
		retryAfter:  time.Second,
		retryStatus: http.StatusTooManyRequests,
	}
}

func (r *RateLimiter) waitIfNeeded(req *http.Request) error {
	if err := r.pacer.Wait(req.Context()); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, reset := r.remaining, r.reset
	r.mu.Unlock()

	if remaining <= 0 && time.Now().Before(reset) {
		waitTime := time.Until(reset)
		logger.Warn("[RateLimiter] Rate limit exhausted. Waiting %v until reset at %v", waitTime, reset)
		select {
		case <-time.After(waitTime):
		case <-req.Context().Done():
			return req.Context().Err()
		}
	}
	return nil
}

func (r *RateLimiter) updateFromHeaders(headers http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := headers.Get("X-RateLimit-Remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	if reset := headers.Get("X-RateLimit-Reset"); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.reset = time.Unix(val, 0)
		}
	}

	if retry := headers.Get("Retry-After"); retry != "" {
		if seconds, err := strconv.Atoi(retry); err == nil {
			r.retryAfter = time.Duration(seconds) * time.Second
		}
	}

	if headers.Get("X-RateLimit-Remaining") != "" && r.remaining < r.lowWarn {
		logger.Warn("[RateLimiter] Low rate limit: %d remaining. Resets at %s", r.remaining, r.reset.Format(time.RFC1123))
	}
}

func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

func (r *RateLimiter) Middleware(next http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if err := r.waitIfNeeded(req); err != nil {
			return nil, err
		}

		resp, err := next.RoundTrip(req)
		if err != nil {
			logger.Error("Network error in RoundTrip: %v", err)
			return nil, err
		}

		r.updateFromHeaders(resp.Header)

		// * Retry once on 429; GraphQL POST bodies cannot be replayed without GetBody
		if resp.StatusCode == r.retryStatus && (req.Body == nil || req.GetBody != nil) {
			r.mu.Lock()
			wait := r.retryAfter
			r.mu.Unlock()

			logger.Warn("[RateLimiter] Received 429. Retrying after %v...", wait)
			resp.Body.Close()

			select {
			case <-time.After(wait):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}

			retry := req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				retry.Body = body
			}
			return next.RoundTrip(retry)
		}

		return resp, nil
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
