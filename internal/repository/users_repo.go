package repository

import (
	"context"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// UsersRepository 用户Repository接口
type UsersRepository interface {
	// GetUser 按ID获取用户
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByAccountHash 按账号哈希获取用户（登录用）
	GetUserByAccountHash(ctx context.Context, accountHash []byte) (*domain.User, error)

	// ListCaregiversByOwner 列出归属某主照护者的协助照护者
	ListCaregiversByOwner(ctx context.Context, ownerID string) ([]domain.User, error)

	// CreateUser 创建用户，返回生成的ID
	CreateUser(ctx context.Context, user *domain.User) (string, error)

	// UpdateProfile 更新昵称/邮箱/电话/头像
	UpdateProfile(ctx context.Context, userID string, user *domain.User) error

	// SetOwner 绑定协助照护者到主照护者（邀请码兑换时调用）
	SetOwner(ctx context.Context, userID, ownerID string) error

	// TouchLastLogin 更新最近登录时间
	TouchLastLogin(ctx context.Context, userID string) error
}
