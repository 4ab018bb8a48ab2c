package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()
	assert.NoError(t, r.Ping(ctx))

	mr.Close()
	assert.Error(t, r.Ping(ctx))

	var missing *Redis
	assert.Error(t, missing.Ping(ctx))
}
