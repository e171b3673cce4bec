package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/store"

	"go.uber.org/zap"
)

// 邀请码字母表：去掉易混淆字符（0/O、1/I/L）
const inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 6

// InviteService 邀请码服务接口
type InviteService interface {
	// GenerateInvite 生成一次性邀请码（仅限 owner）
	GenerateInvite(ctx context.Context, ownerID string) (*InviteCodeResponse, error)

	// RedeemInvite 兑换邀请码，绑定协助照护者到主照护者
	RedeemInvite(ctx context.Context, req RedeemInviteRequest) (*RedeemInviteResponse, error)

	// ListRedemptions 主照护者查看兑换历史
	ListRedemptions(ctx context.Context, ownerID string) ([]domain.Invite, error)
}

// inviteService 实现
type inviteService struct {
	inviteStore *store.InviteStore
	usersRepo   repository.UsersRepository
	invitesRepo repository.InvitesRepository
	notifier    Notifier
	ttl         time.Duration
	logger      *zap.Logger
}

// NewInviteService 创建邀请码服务
func NewInviteService(
	inviteStore *store.InviteStore,
	usersRepo repository.UsersRepository,
	invitesRepo repository.InvitesRepository,
	notifier Notifier,
	ttl time.Duration,
	logger *zap.Logger,
) InviteService {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &inviteService{
		inviteStore: inviteStore,
		usersRepo:   usersRepo,
		invitesRepo: invitesRepo,
		notifier:    notifier,
		ttl:         ttl,
		logger:      logger,
	}
}

// InviteCodeResponse 生成邀请码响应
type InviteCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RedeemInviteRequest 兑换请求
type RedeemInviteRequest struct {
	CaregiverID string
	Code        string
}

// RedeemInviteResponse 兑换响应
type RedeemInviteResponse struct {
	OwnerID string `json:"ownerId"`
}

// GenerateInvite 生成一次性邀请码
func (s *inviteService) GenerateInvite(ctx context.Context, ownerID string) (*InviteCodeResponse, error) {
	owner, err := s.usersRepo.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RoleOwner {
		return nil, fmt.Errorf("only the profile owner can generate invite codes")
	}

	// 碰撞时重新生成（6位31字符字母表，碰撞概率可忽略，重试纯属保险）
	for attempt := 0; attempt < 3; attempt++ {
		code, err := randomInviteCode()
		if err != nil {
			return nil, err
		}
		err = s.inviteStore.Put(ctx, code, ownerID, s.ttl)
		if err == store.ErrCodeCollision {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("Invite code generated", zap.String("owner_id", ownerID))
		return &InviteCodeResponse{Code: code, ExpiresAt: time.Now().Add(s.ttl)}, nil
	}
	return nil, fmt.Errorf("failed to generate a unique invite code")
}

// RedeemInvite 兑换邀请码
func (s *inviteService) RedeemInvite(ctx context.Context, req RedeemInviteRequest) (*RedeemInviteResponse, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("invite code is required")
	}

	ownerID, err := s.inviteStore.Redeem(ctx, req.Code)
	if err != nil {
		if err == store.ErrCodeNotFound {
			return nil, fmt.Errorf("invite code is invalid or expired")
		}
		return nil, err
	}

	if err := s.usersRepo.SetOwner(ctx, req.CaregiverID, ownerID); err != nil {
		// 绑定失败时码已被消耗；记录错误并向上报告，owner 需要重新发码
		s.logger.Error("Failed to bind caregiver after invite redemption",
			zap.String("caregiver_id", req.CaregiverID),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to link caregiver: %w", err)
	}

	if _, err := s.invitesRepo.RecordRedemption(ctx, &domain.Invite{
		OwnerID:     ownerID,
		CaregiverID: req.CaregiverID,
		Code:        req.Code,
		RedeemedAt:  time.Now(),
	}); err != nil {
		// 审计记录失败不回滚绑定
		s.logger.Warn("Failed to record invite redemption", zap.Error(err))
	}

	s.logger.Info("Invite code redeemed",
		zap.String("caregiver_id", req.CaregiverID),
		zap.String("owner_id", ownerID),
	)

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, ownerID, "Caregiver joined", "A caregiver accepted your invite"); err != nil {
			s.logger.Warn("Failed to notify owner about redemption", zap.Error(err))
		}
	}
	return &RedeemInviteResponse{OwnerID: ownerID}, nil
}

// ListRedemptions 查看兑换历史
func (s *inviteService) ListRedemptions(ctx context.Context, ownerID string) ([]domain.Invite, error) {
	return s.invitesRepo.ListRedemptionsByOwner(ctx, ownerID)
}

// randomInviteCode 生成随机邀请码
func randomInviteCode() (string, error) {
	out := make([]byte, inviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		out[i] = inviteAlphabet[n.Int64()]
	}
	return string(out), nil
}
