package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/courier-service/internal/domain"
)

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSessionStore(client, "courier:session:")
	ctx := context.Background()
	branch := "b1"
	identity := NewIdentity(&domain.User{
		ID:       "op-1",
		Name:     "Olga",
		Email:    "olga@example.com",
		RoleName: domain.RoleOperator,
		BranchID: &branch,
		Active:   true,
	})

	require.NoError(t, store.Put(ctx, "s1", identity, time.Minute))
	assert.True(t, mr.Exists("courier:session:s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", got.ID)
	assert.Equal(t, domain.RoleOperator, got.Role)
	require.NotNil(t, got.BranchID)
	assert.Equal(t, "b1", *got.BranchID)
	assert.True(t, got.Can(CapCreatePackage))
	assert.False(t, got.Can(CapManageUsers))

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "s2", identity, time.Minute))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
