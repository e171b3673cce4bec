package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestInviteStore_PutAndRedeem(t *testing.T) {
	c := setupRedis(t)
	s := NewInviteStore(c)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ABC123", "owner-1", time.Hour))

	ownerID, err := s.Redeem(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", ownerID)

	// 一次性：第二次兑换必须失败
	_, err = s.Redeem(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestInviteStore_RedeemUnknownCode(t *testing.T) {
	c := setupRedis(t)
	s := NewInviteStore(c)

	_, err := s.Redeem(context.Background(), "NOPE99")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestInviteStore_PutCollision(t *testing.T) {
	c := setupRedis(t)
	s := NewInviteStore(c)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ABC123", "owner-1", time.Hour))
	err := s.Put(ctx, "ABC123", "owner-2", time.Hour)
	assert.ErrorIs(t, err, ErrCodeCollision)

	// 原值不受影响
	ownerID, err := s.Redeem(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", ownerID)
}

func TestInviteStore_Revoke(t *testing.T) {
	c := setupRedis(t)
	s := NewInviteStore(c)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "ABC123", "owner-1", time.Hour))
	require.NoError(t, s.Revoke(ctx, "ABC123"))

	_, err := s.Redeem(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	assert.ErrorIs(t, s.Revoke(ctx, "ABC123"), ErrCodeNotFound)
}

func TestPushTokenStore(t *testing.T) {
	c := setupRedis(t)
	s := NewPushTokenStore(c)
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, "user-1", "token-a"))
	require.NoError(t, s.Register(ctx, "user-1", "token-b"))
	// 重复注册幂等
	require.NoError(t, s.Register(ctx, "user-1", "token-a"))

	tokens, err := s.TokensFor(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"token-a", "token-b"}, tokens)

	require.NoError(t, s.Unregister(ctx, "user-1", "token-a"))
	tokens, err = s.TokensFor(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"token-b"}, tokens)
}

func TestRedisKV(t *testing.T) {
	c := setupRedis(t)
	kv := NewRedisKV(c)
	ctx := context.Background()

	_, err := kv.Get(ctx, "name:pt-1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "name:pt-1", "Maria", time.Minute))
	val, err := kv.Get(ctx, "name:pt-1")
	require.NoError(t, err)
	assert.Equal(t, "Maria", val)

	require.NoError(t, kv.Delete(ctx, "name:pt-1"))
	_, err = kv.Get(ctx, "name:pt-1")
	assert.ErrorIs(t, err, ErrMiss)
}
