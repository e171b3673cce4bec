package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/store"
	redisutil "github.com/pweat/Opieka-Plus-sub000/pkg/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 推送事件流（生产者：各业务 service，消费者：PushService.Run）
const (
	pushStream        = "opieka:push"
	pushConsumerGroup = "push-senders"
)

// pushEvent 入队的推送事件
type pushEvent struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// PushService 推送服务：Token注册 + 事件入队 + 后台投递
// 业务侧只负责把事件写进 Redis Stream，网关调用在后台消费者里完成，
// 投递失败不会影响触发它的业务请求
type PushService struct {
	tokens      *store.PushTokenStore
	gateway     *PushGatewayClient
	redisClient *redis.Client
	consumer    string
	logger      *zap.Logger
}

// NewPushService 创建推送服务
func NewPushService(
	tokens *store.PushTokenStore,
	gateway *PushGatewayClient,
	redisClient *redis.Client,
	consumer string,
	logger *zap.Logger,
) *PushService {
	if consumer == "" {
		consumer = "opieka-data"
	}
	return &PushService{
		tokens:      tokens,
		gateway:     gateway,
		redisClient: redisClient,
		consumer:    consumer,
		logger:      logger,
	}
}

// 确保实现了 Notifier 接口
var _ Notifier = (*PushService)(nil)

// Notify 把推送事件写入队列（不直接调用网关）
func (s *PushService) Notify(ctx context.Context, userID, title, body string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	_, err := redisutil.PublishJSONToStream(ctx, s.redisClient, pushStream, pushEvent{
		UserID: userID,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue push event: %w", err)
	}
	return nil
}

// RegisterToken 注册设备推送Token
func (s *PushService) RegisterToken(ctx context.Context, userID, token string) error {
	return s.tokens.Register(ctx, userID, token)
}

// UnregisterToken 注销设备推送Token
func (s *PushService) UnregisterToken(ctx context.Context, userID, token string) error {
	return s.tokens.Unregister(ctx, userID, token)
}

// Run 后台消费循环：读事件 → 查Token → 调网关 → ACK
// ctx 取消后返回
func (s *PushService) Run(ctx context.Context) error {
	if err := redisutil.CreateConsumerGroup(ctx, s.redisClient, pushStream, pushConsumerGroup); err != nil {
		return fmt.Errorf("failed to create push consumer group: %w", err)
	}
	s.logger.Info("Push consumer started", zap.String("stream", pushStream))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Push consumer stopped")
			return ctx.Err()
		default:
		}

		messages, err := redisutil.ReadFromStream(ctx, s.redisClient, pushStream, pushConsumerGroup, s.consumer, 16)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("Failed to read push stream", zap.Error(err))
			continue
		}

		for _, msg := range messages {
			s.deliver(ctx, msg.Values)
			if err := redisutil.AckMessage(ctx, s.redisClient, pushStream, pushConsumerGroup, msg.ID); err != nil {
				s.logger.Warn("Failed to ack push message", zap.String("id", msg.ID), zap.Error(err))
			}
		}
	}
}

// deliver 投递单个事件；所有失败只记日志（队列侧已ACK，不做重投）
func (s *PushService) deliver(ctx context.Context, values map[string]interface{}) {
	raw, _ := values["data"].(string)
	if raw == "" {
		return
	}
	var event pushEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		s.logger.Warn("Failed to decode push event", zap.Error(err))
		return
	}

	tokens, err := s.tokens.TokensFor(ctx, event.UserID)
	if err != nil {
		s.logger.Warn("Failed to load push tokens",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := s.gateway.Send(tokens, event.Title, event.Body); err != nil {
		s.logger.Warn("Failed to deliver push notification",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
