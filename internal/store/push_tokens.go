package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// PushTokenStore 设备推送Token注册表
// key: push:tokens:<userID>，SET 结构（一个用户可能有多台设备）
type PushTokenStore struct {
	c *redis.Client
}

func NewPushTokenStore(c *redis.Client) *PushTokenStore { return &PushTokenStore{c: c} }

func pushTokenKey(userID string) string {
	return "push:tokens:" + userID
}

// Register 注册一个设备Token（重复注册幂等）
func (s *PushTokenStore) Register(ctx context.Context, userID, token string) error {
	if err := s.c.SAdd(ctx, pushTokenKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to register push token: %w", err)
	}
	return nil
}

// Unregister 注销一个设备Token（登出时调用）
func (s *PushTokenStore) Unregister(ctx context.Context, userID, token string) error {
	if err := s.c.SRem(ctx, pushTokenKey(userID), token).Err(); err != nil {
		return fmt.Errorf("failed to unregister push token: %w", err)
	}
	return nil
}

// TokensFor 返回某用户全部已注册的设备Token
func (s *PushTokenStore) TokensFor(ctx context.Context, userID string) ([]string, error) {
	tokens, err := s.c.SMembers(ctx, pushTokenKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load push tokens: %w", err)
	}
	return tokens, nil
}
