package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const maxWriteRetries = 3

// retryableWriteError reports whether a write failed on transient
// contention worth retrying: lock waits, deadlocks, and serialization
// failures. Everything else propagates immediately.
func retryableWriteError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked")
}

// withWriteRetry runs op, retrying transient contention errors a small
// bounded number of times with exponential backoff before surfacing.
func (s *Store) withWriteRetry(ctx context.Context, name string, op func() error) error {
	attempt := 0
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !retryableWriteError(err) {
			return backoff.Permanent(err)
		}
		attempt++
		s.log.Warn("storage_write_contention_retrying",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, maxWriteRetries), ctx))
}
