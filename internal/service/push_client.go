package service

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PushGatewayClient 推送网关客户端（Expo push API 兼容）
type PushGatewayClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewPushGatewayClient 创建推送网关客户端
func NewPushGatewayClient(baseURL string, logger *zap.Logger) *PushGatewayClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &PushGatewayClient{
		httpClient: client,
		logger:     logger,
	}
}

// pushMessage 推送网关请求体（每个设备Token一条）
type pushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// pushTicket 推送网关响应中的单条回执
type pushTicket struct {
	Status  string `json:"status"` // "ok" | "error"
	Message string `json:"message,omitempty"`
}

// pushResponse 推送网关响应体
type pushResponse struct {
	Data []pushTicket `json:"data"`
}

// Send 向一组设备Token发送同一条通知
// 网关层面的单Token失败只记日志（收不到推送不是致命错误）
func (c *PushGatewayClient) Send(tokens []string, title, body string) error {
	if len(tokens) == 0 {
		return nil
	}

	messages := make([]pushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, pushMessage{
			To:    token,
			Title: title,
			Body:  body,
			Sound: "default",
		})
	}

	var result pushResponse
	resp, err := c.httpClient.R().
		SetBody(messages).
		SetResult(&result).
		Post("/--/api/v2/push/send")
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode())
	}

	for i, ticket := range result.Data {
		if ticket.Status != "ok" && i < len(tokens) {
			c.logger.Warn("Push delivery rejected for token",
				zap.String("status", ticket.Status),
				zap.String("message", ticket.Message),
			)
		}
	}
	return nil
}
