// Package pool implements Reactor's concurrency pool (C6): a process-wide,
// thread-safe registry of named slot budgets. It is the only shared mutable
// structure the executor touches; everything else reactor state is owned
// exclusively by the single-threaded executor loop.
package pool

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Key identifies one allocated pool.
type Key string

type entry struct {
	mu        sync.Mutex
	available int
	limit     int
}

var (
	registryMu sync.Mutex
	registry   = make(map[Key]*entry)
)

// AllocatePool reserves a new pool of limit slots and returns its key. The
// caller becomes owner; if ctx is cancelled the registry's supervisor
// releases the pool automatically, matching the spec's owner-liveness
// guarantee without requiring an explicit release call on crash.
func AllocatePool(ctx context.Context, limit int) Key {
	key := Key(uuid.NewString())

	registryMu.Lock()
	registry[key] = &entry{available: limit, limit: limit}
	registryMu.Unlock()

	if ctx != nil {
		go func() {
			<-ctx.Done()
			ReleasePool(key)
		}()
	}

	return key
}

// ReleasePool removes key from the registry. Tasks already holding slots
// retain the right to finish (Release still works against a released key's
// caller-held count), but no further Acquire against this key succeeds.
func ReleasePool(key Key) {
	registryMu.Lock()
	delete(registry, key)
	registryMu.Unlock()
}

// Acquire atomically takes up to n slots from key's pool, returning how
// many were actually granted (0..n). It never blocks.
func Acquire(key Key, n int) int {
	registryMu.Lock()
	e, ok := registry[key]
	registryMu.Unlock()
	if !ok || n <= 0 {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	granted := n
	if granted > e.available {
		granted = e.available
	}
	e.available -= granted
	return granted
}

// Release returns n slots to key's pool, capped at the pool's limit. A
// released pool silently discards the return (its entry no longer exists).
func Release(key Key, n int) {
	if n <= 0 {
		return
	}
	registryMu.Lock()
	e, ok := registry[key]
	registryMu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.available += n
	if e.available > e.limit {
		e.available = e.limit
	}
}

// Status reports key's current availability and limit.
func Status(key Key) (available, limit int, ok bool) {
	registryMu.Lock()
	e, found := registry[key]
	registryMu.Unlock()
	if !found {
		return 0, 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available, e.limit, true
}
