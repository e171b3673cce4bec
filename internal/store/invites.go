package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// ErrCodeNotFound 邀请码不存在、已过期或已被兑换
	ErrCodeNotFound = errors.New("invite code not found")
	// ErrCodeCollision 生成的邀请码已存在（极小概率，调用方重新生成）
	ErrCodeCollision = errors.New("invite code collision")
)

// InviteStore 一次性邀请码存储（Redis 为唯一权威来源）
// key: invite:code:<CODE>，value: 发码的主照护者ID，带TTL
// 兑换用 GETDEL 保证原子性：同一个码并发兑换只会成功一次
type InviteStore struct {
	c *redis.Client
}

func NewInviteStore(c *redis.Client) *InviteStore { return &InviteStore{c: c} }

func inviteKey(code string) string {
	return "invite:code:" + code
}

// Put 存入新邀请码；码已存在时返回 ErrCodeCollision
func (s *InviteStore) Put(ctx context.Context, code, ownerID string, ttl time.Duration) error {
	ok, err := s.c.SetNX(ctx, inviteKey(code), ownerID, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store invite code: %w", err)
	}
	if !ok {
		return ErrCodeCollision
	}
	return nil
}

// Redeem 原子兑换：取出并删除，返回发码者ID
func (s *InviteStore) Redeem(ctx context.Context, code string) (string, error) {
	ownerID, err := s.c.GetDel(ctx, inviteKey(code)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("failed to redeem invite code: %w", err)
	}
	return ownerID, nil
}

// Revoke 主照护者主动撤销未兑换的邀请码
func (s *InviteStore) Revoke(ctx context.Context, code string) error {
	n, err := s.c.Del(ctx, inviteKey(code)).Result()
	if err != nil {
		return fmt.Errorf("failed to revoke invite code: %w", err)
	}
	if n == 0 {
		return ErrCodeNotFound
	}
	return nil
}
