package utils

import (
	"ClinicQueue/cache"
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
)

const resetCodeExpiry = 15 * time.Minute

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// SetResetCode stores the reset code for an email with a 15 minute expiry.
func SetResetCode(ctx context.Context, store *cache.Cache, email, code string) error {
	return store.Set(ctx, "reset_code:"+email, code, resetCodeExpiry)
}

// GetResetCode retrieves the reset code for an email, or nil when none is set.
func GetResetCode(ctx context.Context, store *cache.Cache, email string) (*string, error) {
	code, err := store.Get(ctx, "reset_code:"+email)
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// DeleteResetCode removes the reset code for an email.
func DeleteResetCode(ctx context.Context, store *cache.Cache, email string) error {
	return store.Delete(ctx, "reset_code:"+email)
}
