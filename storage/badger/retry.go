// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pagesearch/storage"
)

// retryOnConflict runs a write transaction until it commits without a
// transaction conflict, backing off exponentially between attempts.
// Errors other than badger.ErrConflict are returned immediately.
// Returns storage.ErrWriteConflict once the attempts are used up.
func (c *Connector) retryOnConflict(ctx context.Context, operation func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				c.logger.Debug("write succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !errors.Is(lastErr, badger.ErrConflict) {
			return lastErr
		}

		c.logger.Debug("write conflict, will retry", "attempt", attempt, "maxAttempts", c.maxAttempts)

		// Don't sleep after the last attempt
		if attempt == c.maxAttempts {
			break
		}

		// Calculate exponential backoff: baseDelay * 2^(attempt-1)
		delay := c.retryDelay
		for i := 1; i < attempt && delay < maxRetryDelay; i++ {
			delay *= 2
		}
		delay = min(delay, maxRetryDelay)

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w: after %d attempts: %w", storage.ErrWriteConflict, c.maxAttempts, lastErr)
}
