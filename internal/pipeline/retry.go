package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/mwaldrep/sigsplit/internal/extract"
)

// IsRetryable reports whether an extraction error is transient (rate limit
// or upstream 5xx) and worth another attempt.
func IsRetryable(err error) bool {
	var retryErr *extract.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the wait before retrying attempt n (0-indexed):
// exponential with jitter, capped at 30s.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// MaxRetries bounds attempts for one page's extraction call.
const MaxRetries = 3
