package microsoft

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error types for Microsoft API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("microsoft: unauthorised")

	// ErrForbidden indicates the app lacks permission for the requested resource.
	ErrForbidden = errors.New("microsoft: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("microsoft: not found")

	// ErrRateLimited indicates the request was throttled.
	ErrRateLimited = errors.New("microsoft: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("microsoft: bad request")

	// ErrServerError indicates a server-side error.
	ErrServerError = errors.New("microsoft: server error")
)

// RateLimitError is a throttling rejection carrying the server-suggested
// wait. It matches ErrRateLimited under errors.Is, so callers that do not
// care about the duration can classify it with the sentinel alone.
type RateLimitError struct {
	// RetryAfter is the Retry-After duration, or zero when the server did
	// not suggest one.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("microsoft: rate limited, retry after %s", e.RetryAfter)
	}
	return "microsoft: rate limited"
}

// Is makes errors.Is(err, ErrRateLimited) hold for RateLimitError values.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryExhaustedError indicates the invoker consumed its attempt budget
// without the operation succeeding. It wraps the last underlying failure.
type RetryExhaustedError struct {
	// Operation names the wrapped remote call.
	Operation string
	// Attempts is the number of attempts issued.
	Attempts int
	// Last is the final underlying failure.
	Last error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("microsoft: %s: retries exhausted after %d attempts: %v", e.Operation, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// WrapStatus converts an HTTP status code to an appropriate error.
// Success codes return nil.
func WrapStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// ResponseError classifies a non-success response, preserving the
// Retry-After duration for throttling rejections.
func ResponseError(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: RetryAfterFromResponse(resp)}
	}
	return WrapStatus(resp.StatusCode)
}

// RetryAfterFromResponse parses the Retry-After header, accepting both the
// delta-seconds and HTTP-date forms. Returns zero when absent or invalid.
func RetryAfterFromResponse(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}

// IsRateLimited checks if the error is a throttling rejection.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorised checks if the error indicates an authentication failure.
func IsUnauthorised(err error) bool {
	return errors.Is(err, ErrUnauthorised)
}
