package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgredis "github.com/wishboardapp/wishboard-backend/pkg/redis"
)

type fakeKV struct {
	data map[string]string
	sets int
	gets int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.gets++
	value, ok := f.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func TestRememberComputesOnceAndCachesForever(t *testing.T) {
	kv := newFakeKV()
	store, err := New(kv, nil)
	require.NoError(t, err)

	computed := 0
	compute := func(context.Context) (any, error) {
		computed++
		return []string{"a", "b"}, nil
	}

	var first []string
	require.NoError(t, store.Remember(context.Background(), "list", &first, compute))
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, 1, computed)

	var second []string
	require.NoError(t, store.Remember(context.Background(), "list", &second, compute))
	assert.Equal(t, []string{"a", "b"}, second)
	assert.Equal(t, 1, computed, "hit must not recompute")
	assert.Equal(t, 1, kv.sets)
}

func TestRememberServesStaleUntilForgotten(t *testing.T) {
	kv := newFakeKV()
	store, err := New(kv, nil)
	require.NoError(t, err)

	version := "v1"
	compute := func(context.Context) (any, error) { return version, nil }

	var got string
	require.NoError(t, store.Remember(context.Background(), "k", &got, compute))
	assert.Equal(t, "v1", got)

	// The underlying data changed but no invalidation happened: stale value wins.
	version = "v2"
	require.NoError(t, store.Remember(context.Background(), "k", &got, compute))
	assert.Equal(t, "v1", got)

	require.NoError(t, store.Forget(context.Background(), "k"))
	require.NoError(t, store.Remember(context.Background(), "k", &got, compute))
	assert.Equal(t, "v2", got)
}

func TestRememberPropagatesComputeError(t *testing.T) {
	store, err := New(newFakeKV(), nil)
	require.NoError(t, err)

	boom := errors.New("query failed")
	var dest string
	err = store.Remember(context.Background(), "k", &dest, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestOwnerKeys(t *testing.T) {
	store, err := New(newFakeKV(), func(name string) string { return "wb:cache:" + name })
	require.NoError(t, err)

	ownerID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "wb:cache:wish_lists_"+ownerID.String(), store.WishlistsKey(ownerID))
	assert.Equal(t, "wb:cache:my_products"+ownerID.String(), store.MyProductsKey(ownerID))
}

func TestForgetNoKeysIsNoop(t *testing.T) {
	store, err := New(newFakeKV(), nil)
	require.NoError(t, err)
	assert.NoError(t, store.Forget(context.Background()))
}
