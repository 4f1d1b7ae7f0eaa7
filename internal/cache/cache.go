package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pkgredis "github.com/wishboardapp/wishboard-backend/pkg/redis"
)

const (
	wishlistsKeyPrefix  = "wish_lists_"
	myProductsKeyPrefix = "my_products"
)

// KV is the subset of the redis client the cache capability needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store caches per-owner listing payloads with no expiry. Entries only leave
// the cache through Forget after a committed write.
type Store struct {
	kv    KV
	keyFn func(string) string
}

// New builds a cache store. keyFn namespaces raw cache names; pass the redis
// client's CacheKey in production.
func New(kv KV, keyFn func(string) string) (*Store, error) {
	if kv == nil {
		return nil, errors.New("cache kv backend is required")
	}
	if keyFn == nil {
		keyFn = func(name string) string { return name }
	}
	return &Store{kv: kv, keyFn: keyFn}, nil
}

// WishlistsKey names the cached wishlist listing for an owner.
func (s *Store) WishlistsKey(ownerID uuid.UUID) string {
	return s.keyFn(wishlistsKeyPrefix + ownerID.String())
}

// MyProductsKey names the cached "my products" listing for an owner.
func (s *Store) MyProductsKey(ownerID uuid.UUID) string {
	return s.keyFn(myProductsKeyPrefix + ownerID.String())
}

// Remember returns the cached value for key into dest, computing and storing
// it on a miss. Cached entries never expire.
func (s *Store) Remember(ctx context.Context, key string, dest any, compute func(ctx context.Context) (any, error)) error {
	raw, err := s.kv.Get(ctx, key)
	if err == nil {
		return json.Unmarshal([]byte(raw), dest)
	}
	if !errors.Is(err, pkgredis.Nil) {
		return fmt.Errorf("cache get %s: %w", key, err)
	}

	value, err := compute(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, payload, 0); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return json.Unmarshal(payload, dest)
}

// Forget drops the provided cache keys.
func (s *Store) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.kv.Del(ctx, keys...)
}
