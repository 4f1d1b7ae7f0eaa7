package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://:pass@localhost:6380/2",
		PoolSize: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "pass", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 15, opts.PoolSize)
}

func TestOptionsFromConfigFallsBackToAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:  "10.0.0.5:6379",
		Password: "secret",
		DB:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "wb:cache:my_products_123", c.CacheKey("my_products_123"))
	assert.Equal(t, "wb:session:user-1", c.RefreshTokenKey("user-1"))
}
