package microsoft

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a remote Microsoft service for rate limiting purposes.
type ServiceType string

const (
	// ServiceSharePoint is the SharePoint Online tenant administration API.
	ServiceSharePoint ServiceType = "sharepoint"
	// ServiceGraph is the Microsoft Graph directory API.
	ServiceGraph ServiceType = "graph"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults for each service.
// SharePoint Online throttles admin traffic far below the documented Graph
// quota (~10,000 requests per 10 minutes), so the admin API gets a lower rate.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceSharePoint: {RequestsPerSecond: 2.0, BurstSize: 4},
	ServiceGraph:      {RequestsPerSecond: 10.0, BurstSize: 15},
}

// RateLimiter provides proactive rate limiting for Microsoft API requests.
// It uses a token bucket plus a backoff window recorded from 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service ServiceType
}

// NewRateLimiter creates a new rate limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		// Default fallback
		cfg = RateLimitConfig{RequestsPerSecond: 2.0, BurstSize: 4}
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		service: service,
	}
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError records a 429 response and sets a backoff period.
// The retryAfter duration should come from the Retry-After header; zero
// falls back to a 60 second window.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = 60 * time.Second
	}

	r.retryAt = time.Now().Add(retryAfter)
}
