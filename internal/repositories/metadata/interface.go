// Package metadata stores the account's key-value metadata: salt, verifier
// and KDF parameters.
package metadata

import (
	"context"
)

// Repository is a flat string key-value store. Get reports a missing key
// with common.ErrNotFound.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
