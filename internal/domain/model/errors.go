package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUserNotFound signals that the analyzed account does not exist. It is
// terminal: no partial results are possible.
var ErrUserNotFound = errors.New("github user not found")

// RateLimitError signals an API rate limit (HTTP 403/429). It carries the
// reset time reported by the API verbatim; no retry delay is computed here.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "github api rate limit exceeded"
	}
	return fmt.Sprintf("github api rate limit exceeded, resets at %s", e.Reset.UTC().Format(time.RFC3339))
}

// IsRateLimit reports whether err is (or wraps) a RateLimitError.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
