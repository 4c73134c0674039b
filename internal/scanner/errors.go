package scanner

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultRetryAfter = time.Minute

// RateLimitError is returned when a provider answers 429. Provider is "all"
// when every link of a FallbackScanner is cooling down.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry in %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError wraps err. A non-positive retryAfterSecs means one minute.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	wait := time.Duration(retryAfterSecs) * time.Second
	if wait <= 0 {
		wait = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: wait, Err: err}
}

// ParseRetryAfterHeader returns the Retry-After value in seconds, accepting
// delta-seconds or an HTTP date. Unparseable or past values give 0.
func ParseRetryAfterHeader(val string) int {
	if secs, err := strconv.Atoi(val); err == nil {
		return max(secs, 0)
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	return max(int(time.Until(at).Seconds()), 0)
}
