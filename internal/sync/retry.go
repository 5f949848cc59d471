package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jshaw/civicfeed/internal/congress"
)

const (
	maxRetries     = 3
	initialBackoff = 2 * time.Second
)

// withRetry runs fn with exponential backoff. The upstream client does
// no retrying of its own, so the list fetches in stages 1 and 2 retry
// here. Rate-limit responses get a doubled backoff before the next try.
func (e *Engine) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	backoff := e.retryBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Printf("Retrying %s (attempt %d/%d) after %s...", op, attempt+1, maxRetries, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if errors.Is(lastErr, congress.ErrRateLimited) {
			backoff *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, maxRetries, lastErr)
}
