package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthFixture(t *testing.T) (AuthService, *repository.MemoryUsersRepository) {
	t.Helper()
	users := repository.NewMemoryUsersRepository()
	jwt := NewJWTManager(JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		Issuer:               "opieka-test",
	})
	return NewAuthService(users, jwt, zap.NewNop()), users
}

func loginRequest(account, password string) LoginRequest {
	return LoginRequest{
		AccountHash:  hex.EncodeToString(HashAccount(account)),
		PasswordHash: hex.EncodeToString(HashAccountPassword(account, password)),
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Account:  "Anna@Example.com", // 大小写在归一化后不影响登录
		Password: "s3cret",
		Nickname: "Anna",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.UserID)
	assert.Equal(t, domain.RoleOwner, reg.Role)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	resp, err := svc.Login(ctx, loginRequest("anna@example.com", "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, resp.UserID)
	assert.Equal(t, "Anna", resp.Nickname)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Account: "anna@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Account: "ANNA@example.com", Password: "other"})
	assert.ErrorContains(t, err, "already registered")
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Account: "anna@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, loginRequest("anna@example.com", "wrong"))
	// 不透露是账号还是密码错了
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestAuthService_LoginUnknownAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), loginRequest("nobody@example.com", "s3cret"))
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestAuthService_LoginBadHashFormat(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		AccountHash:  "not-hex!",
		PasswordHash: "zzzz",
	})
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestAuthService_Refresh(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Account: "anna@example.com", Password: "s3cret"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// access token 不能当 refresh token 用
	_, err = svc.Refresh(ctx, reg.AccessToken)
	assert.Error(t, err)
}

func TestJWTManager_TokenTypes(t *testing.T) {
	jwt := NewJWTManager(JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: time.Hour,
		Issuer:               "opieka-test",
	})

	access, err := jwt.GenerateAccessToken("u1", domain.RoleCaregiver)
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleCaregiver, claims.Role)

	_, err = jwt.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	jwt := NewJWTManager(JWTConfig{
		SecretKey:            "test-secret",
		AccessTokenDuration:  -time.Minute, // 签出即过期
		RefreshTokenDuration: time.Hour,
		Issuer:               "opieka-test",
	})

	access, err := jwt.GenerateAccessToken("u1", domain.RoleOwner)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
