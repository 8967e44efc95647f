package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireGrantsUpToAvailable(t *testing.T) {
	t.Parallel()

	key := AllocatePool(context.Background(), 2)
	defer ReleasePool(key)

	require.Equal(t, 2, Acquire(key, 5))
	require.Equal(t, 0, Acquire(key, 1))
}

func TestReleaseIsCappedAtLimit(t *testing.T) {
	t.Parallel()

	key := AllocatePool(context.Background(), 2)
	defer ReleasePool(key)

	Acquire(key, 2)
	Release(key, 10)

	available, limit, ok := Status(key)
	require.True(t, ok)
	require.Equal(t, limit, available)
}

func TestReleasePoolRemovesEntry(t *testing.T) {
	t.Parallel()

	key := AllocatePool(context.Background(), 1)
	ReleasePool(key)

	_, _, ok := Status(key)
	require.False(t, ok)
	require.Equal(t, 0, Acquire(key, 1))
}

func TestAllocatePoolReleasesOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	key := AllocatePool(ctx, 1)
	cancel()

	require.Eventually(t, func() bool {
		_, _, ok := Status(key)
		return !ok
	}, 200*time.Millisecond, 5*time.Millisecond)
}
