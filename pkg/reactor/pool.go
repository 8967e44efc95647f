package reactor

import (
	"context"

	"github.com/alexisbeaulieu97/reactor/internal/pool"
)

// PoolKey identifies an allocated concurrency pool.
type PoolKey = pool.Key

// AllocatePool reserves a new pool of limit slots. If ctx is cancelled the
// pool is released automatically.
func AllocatePool(ctx context.Context, limit int) PoolKey {
	return pool.AllocatePool(ctx, limit)
}

// ReleasePool removes key from the registry.
func ReleasePool(key PoolKey) {
	pool.ReleasePool(key)
}

// AcquirePool atomically takes up to n slots from key's pool, never
// blocking, returning how many were actually granted.
func AcquirePool(key PoolKey, n int) int {
	return pool.Acquire(key, n)
}

// ReleaseSlots returns n slots to key's pool, capped at its limit.
func ReleaseSlots(key PoolKey, n int) {
	pool.Release(key, n)
}

// PoolStatus reports key's current availability and limit.
func PoolStatus(key PoolKey) (available, limit int, ok bool) {
	return pool.Status(key)
}
