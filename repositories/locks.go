package repositories

import (
	"ClinicQueue/database"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	lockTTL       = 10 * time.Second
	lockRetries   = 3
	lockRetryWait = 2 * time.Second
)

// withLock runs fn while holding the named Redis lock. Acquisition is
// retried a few times before giving up; release failures are logged only,
// since the TTL reclaims the lock anyway.
func withLock(ctx context.Context, key string, fn func() error) error {
	value := uuid.New().String()

	var locked bool
	var err error
	for i := 0; i < lockRetries; i++ {
		locked, err = database.NewLock(ctx, key, value, lockTTL)
		if err == nil && locked {
			break
		}
		if i < lockRetries-1 {
			time.Sleep(lockRetryWait)
		}
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock %s after retries: %w", key, err)
	}
	defer func() {
		if err := database.ReleaseLock(ctx, key, value); err != nil {
			log.Printf("Failed to release lock %s: %v", key, err)
		}
	}()

	return fn()
}
