package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/wishboardapp/wishboard-backend/pkg/config"
	pkgredis "github.com/wishboardapp/wishboard-backend/pkg/redis"
)

const refreshTokenBytes = 32

// Manager issues and validates opaque refresh tokens stored in Redis,
// one token per user; rotation overwrites the previous value.
type Manager struct {
	redis *pkgredis.Client
	cfg   config.JWTConfig
}

// NewManager wires the session manager to its redis backend.
func NewManager(redisClient *pkgredis.Client, cfg config.JWTConfig) (*Manager, error) {
	if redisClient == nil {
		return nil, errors.New("redis client is required")
	}
	return &Manager{redis: redisClient, cfg: cfg}, nil
}

// Issue mints a fresh refresh token for the user and persists it.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := m.redis.StoreRefreshToken(ctx, userID, token, m.cfg.RefreshTokenTTL()); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

// Validate reports whether the presented token matches the stored one.
func (m *Manager) Validate(ctx context.Context, userID, token string) (bool, error) {
	stored, err := m.redis.GetRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("load refresh token: %w", err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}

// Rotate validates the presented token and replaces it with a new one.
func (m *Manager) Rotate(ctx context.Context, userID, token string) (string, error) {
	ok, err := m.Validate(ctx, userID, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("refresh token mismatch")
	}
	return m.Issue(ctx, userID)
}

// Revoke drops the user's refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	return m.redis.RevokeRefreshToken(ctx, userID)
}

func newToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
