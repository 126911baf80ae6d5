// Package settings stores user preferences as JSON values under string keys.
package settings

import "context"

// Repository marshals values to JSON on Put and unmarshals into v on Get.
// Get reports a missing key with common.ErrNotFound.
type Repository interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
