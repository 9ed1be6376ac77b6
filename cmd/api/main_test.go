package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/config"
)

func TestSetupLimiterMemory(t *testing.T) {
	limiter, closeFn, err := setupLimiter(context.Background(), &config.Config{LoginMaxAttempts: 5}, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	_, ok := limiter.(*auth.MemoryLimiter)
	assert.True(t, ok)
}

func TestSetupLimiterRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{LoginMaxAttempts: 2, LoginLimiterRedisURL: "redis://" + mr.Addr()}

	limiter, closeFn, err := setupLimiter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()

	_, ok := limiter.(*auth.RedisLimiter)
	require.True(t, ok)

	remaining, err := limiter.RecordFailure(context.Background(), "ip")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestSetupLimiterRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := setupLimiter(context.Background(), &config.Config{LoginLimiterRedisURL: "redis://" + addr}, zap.NewNop())
	assert.Error(t, err)
}
