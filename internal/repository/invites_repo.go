package repository

import (
	"context"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// InvitesRepository 邀请码兑换审计Repository接口
// 未兑换的邀请码存放在 Redis（带TTL），这里只记录兑换结果
type InvitesRepository interface {
	// RecordRedemption 记录一次兑换
	RecordRedemption(ctx context.Context, invite *domain.Invite) (string, error)

	// ListRedemptionsByOwner 列出某主照护者名下的兑换记录
	ListRedemptionsByOwner(ctx context.Context, ownerID string) ([]domain.Invite, error)
}
