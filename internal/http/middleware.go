package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "userID"
	ctxKeyRole   contextKey = "role"
)

// AuthMiddleware Bearer 令牌校验，把 userID/role 放进请求上下文
type AuthMiddleware struct {
	jwt    *service.JWTManager
	logger *zap.Logger
}

func NewAuthMiddleware(jwt *service.JWTManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, logger: logger}
}

// Require 校验 Authorization: Bearer <token>，失败返回 401
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, Fail("missing bearer token"))
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		claims, err := m.jwt.ValidateAccessToken(token)
		if err != nil {
			if errors.Is(err, service.ErrExpiredToken) {
				writeJSON(w, http.StatusUnauthorized, FailTokenExpired("token expired"))
				return
			}
			m.logger.Warn("Token validation failed", zap.Error(err), zap.String("ip_address", getClientIP(r)))
			writeJSON(w, http.StatusUnauthorized, Fail("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxKeyRole, claims.Role)
		next(w, r.WithContext(ctx))
	}
}

// callerFromCtx 取出中间件写入的调用者身份
func callerFromCtx(ctx context.Context) (userID, role string) {
	userID, _ = ctx.Value(ctxKeyUserID).(string)
	role, _ = ctx.Value(ctxKeyRole).(string)
	return userID, role
}
