package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jaldrishti/jaldrishti"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, namespace string) (*DuplicateRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewDuplicateRegistry(client, namespace)
	require.NoError(t, r.Open(context.Background()))
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestDuplicateRegistry_CheckAndAdd(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRegistry(t, "test")

	seen, err := r.CheckAndAdd(ctx, "ff00ff00ff00ff00")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = r.CheckAndAdd(ctx, "ff00ff00ff00ff00")
	require.NoError(t, err)
	assert.True(t, seen)

	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	members, err := mr.Members("jaldrishti:test:phash")
	require.NoError(t, err)
	assert.Equal(t, []string{"ff00ff00ff00ff00"}, members)
}

func TestDuplicateRegistry_SharedNamespace(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestRegistry(t, "shared")

	other := NewDuplicateRegistry(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "shared")
	defer other.Close()

	_, err := a.CheckAndAdd(ctx, "abc")
	require.NoError(t, err)

	seen, err := other.CheckAndAdd(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDuplicateRegistry_RandomNamespaceIsolated(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestRegistry(t, "")

	b := NewDuplicateRegistry(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer b.Close()

	_, err := a.CheckAndAdd(ctx, "abc")
	require.NoError(t, err)

	seen, err := b.CheckAndAdd(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDuplicateRegistry_Concurrent(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, "burst")

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if seen, err := r.CheckAndAdd(ctx, "same"); err == nil && !seen {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), firsts.Load())
}

func TestDuplicateRegistry_Reset(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t, "reset")

	_, _ = r.CheckAndAdd(ctx, "a")
	require.NoError(t, r.Reset(ctx))

	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = r.CheckAndAdd(ctx, "")
	assert.Equal(t, jaldrishti.EINVALID, jaldrishti.ErrorCode(err))
}

func TestDuplicateRegistry_ServerDown(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRegistry(t, "down")
	mr.Close()

	_, err := r.CheckAndAdd(ctx, "a")
	assert.Equal(t, jaldrishti.EINTERNAL, jaldrishti.ErrorCode(err))
}
