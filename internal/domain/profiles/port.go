package profiles

import (
	"context"
	"errors"
)

// ErrSubscriptionInactive indicates a lapsed subscription with no open trial.
var ErrSubscriptionInactive = errors.New("subscription inactive")

// ErrQuotaExhausted indicates the tenant used up its analysis quota.
var ErrQuotaExhausted = errors.New("analysis quota exhausted")

// ErrProfileNotFound indicates no profile row exists for the tenant.
var ErrProfileNotFound = errors.New("profile not found")

// Repository port for the tenant profile store
type Repository interface {
	Get(ctx context.Context, tenant string) (*Profile, error)
	IncrementUsage(ctx context.Context, tenant string) error
}
