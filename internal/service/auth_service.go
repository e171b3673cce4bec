package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"

	"go.uber.org/zap"
)

// 账号/口令哈希规则（与移动端 crypto 工具保持一致）：
// - accountHash = sha256(lower(account))
// - passwordHash = sha256(lower(account) + ":" + password)
func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func normalizeAccount(account string) string {
	return strings.TrimSpace(strings.ToLower(account))
}

// HashAccount 账号哈希
func HashAccount(account string) []byte {
	return sha256Sum(normalizeAccount(account))
}

// HashAccountPassword 账号+口令哈希
func HashAccountPassword(account, password string) []byte {
	return sha256Sum(normalizeAccount(account) + ":" + password)
}

// AuthService 认证授权服务接口
type AuthService interface {
	// Register 注册新账号（主照护者直接可用；协助照护者注册后需兑换邀请码绑定）
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)

	// Login 用户登录
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// Refresh 用刷新令牌换新的令牌对
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// authService 实现
type authService struct {
	usersRepo repository.UsersRepository
	jwt       *JWTManager
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(usersRepo repository.UsersRepository, jwt *JWTManager, logger *zap.Logger) AuthService {
	return &authService{
		usersRepo: usersRepo,
		jwt:       jwt,
		logger:    logger,
	}
}

// TokenPair 令牌对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Account  string // 必填，登录账号（邮箱或手机号）
	Password string // 必填
	Nickname string // 可选
	Role     string // 'owner' | 'caregiver'，默认 'owner'
}

// LoginRequest 登录请求
type LoginRequest struct {
	AccountHash  string // SHA256(lower(account)) 的 hex 编码，必填
	PasswordHash string // SHA256(lower(account)+":"+password) 的 hex 编码，必填
	IPAddress    string // 客户端 IP（用于日志）
	UserAgent    string // 客户端 User-Agent（用于日志）
}

// LoginResponse 登录/注册响应
type LoginResponse struct {
	TokenPair
	UserID      string `json:"userId"`
	UserAccount string `json:"userAccount"`
	Nickname    string `json:"nickname"`
	Role        string `json:"role"`
	OwnerID     string `json:"ownerId,omitempty"` // 协助照护者归属的主照护者
}

// Register 注册新账号
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	account := normalizeAccount(req.Account)
	if account == "" || req.Password == "" {
		return nil, fmt.Errorf("account and password are required")
	}

	role := req.Role
	if role == "" {
		role = domain.RoleOwner
	}
	if role != domain.RoleOwner && role != domain.RoleCaregiver {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	accountHash := HashAccount(account)
	if existing, err := s.usersRepo.GetUserByAccountHash(ctx, accountHash); err == nil && existing != nil {
		return nil, fmt.Errorf("account already registered")
	}

	user := &domain.User{
		UserAccount:     account,
		UserAccountHash: accountHash,
		PasswordHash:    HashAccountPassword(account, req.Password),
		Role:            role,
	}
	if req.Nickname != "" {
		user.Nickname = sql.NullString{String: req.Nickname, Valid: true}
	}

	userID, err := s.usersRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info("User registered",
		zap.String("user_id", userID),
		zap.String("role", role),
	)

	return s.buildLoginResponse(userID, account, req.Nickname, role, "")
}

// Login 用户登录
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.AccountHash = strings.TrimSpace(req.AccountHash)
	req.PasswordHash = strings.TrimSpace(req.PasswordHash)
	if req.AccountHash == "" || req.PasswordHash == "" {
		s.logger.Warn("User login failed: missing credentials",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_agent", req.UserAgent),
			zap.String("reason", "missing_credentials"),
		)
		return nil, fmt.Errorf("missing credentials")
	}

	accountHashBytes, err := hex.DecodeString(req.AccountHash)
	if err != nil || len(accountHashBytes) == 0 {
		s.logger.Warn("User login failed: invalid account hash format",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "invalid_account_hash"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("invalid credentials")
	}
	passwordHashBytes, err := hex.DecodeString(req.PasswordHash)
	if err != nil || len(passwordHashBytes) == 0 {
		s.logger.Warn("User login failed: invalid password hash format",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "invalid_password_hash"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("invalid credentials")
	}

	user, err := s.usersRepo.GetUserByAccountHash(ctx, accountHashBytes)
	if err != nil {
		s.logger.Warn("User login failed: account not found",
			zap.String("ip_address", req.IPAddress),
			zap.String("reason", "account_not_found"),
		)
		return nil, fmt.Errorf("invalid credentials")
	}
	if !bytes.Equal(user.PasswordHash, passwordHashBytes) {
		s.logger.Warn("User login failed: wrong password",
			zap.String("ip_address", req.IPAddress),
			zap.String("user_id", user.UserID),
			zap.String("reason", "wrong_password"),
		)
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := s.usersRepo.TouchLastLogin(ctx, user.UserID); err != nil {
		// 登录时间更新失败不阻断登录
		s.logger.Warn("Failed to touch last login", zap.Error(err))
	}
	s.logger.Info("User logged in",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("ip_address", req.IPAddress),
	)

	ownerID := ""
	if user.OwnerID.Valid {
		ownerID = user.OwnerID.String
	}
	return s.buildLoginResponse(user.UserID, user.UserAccount, user.DisplayName(), user.Role, ownerID)
}

// Refresh 用刷新令牌换新的令牌对
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// 确认账号仍然有效
	user, err := s.usersRepo.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	access, err := s.jwt.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.UserID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) buildLoginResponse(userID, account, nickname, role, ownerID string) (*LoginResponse, error) {
	access, err := s.jwt.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &LoginResponse{
		TokenPair:   TokenPair{AccessToken: access, RefreshToken: refresh},
		UserID:      userID,
		UserAccount: account,
		Nickname:    nickname,
		Role:        role,
		OwnerID:     ownerID,
	}, nil
}
