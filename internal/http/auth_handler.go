package httpapi

import (
	"net/http"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 认证授权 Handler
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 创建认证授权 Handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/auth/api/v1/register":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, r)
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, r)
	case "/auth/api/v1/refresh":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Refresh(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Register 注册新账号
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Account  string `json:"account"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
		Role     string `json:"role"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	body.Account = strings.TrimSpace(body.Account)
	if body.Account == "" || body.Password == "" {
		writeJSON(w, http.StatusOK, Fail("account and password are required"))
		return
	}

	resp, err := h.authService.Register(ctx, service.RegisterRequest{
		Account:  body.Account,
		Password: body.Password,
		Nickname: body.Nickname,
		Role:     body.Role,
	})
	if err != nil {
		h.logger.Error("Register failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// Login 用户登录
// 客户端发送的是 accountHash/passwordHash（不传明文密码）
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody map[string]any
	_ = readBodyJSON(r, 1<<20, &reqBody)

	// 兼容 {params:{...}} 包裹格式
	if p, ok := reqBody["params"].(map[string]any); ok && p != nil {
		if _, ok2 := reqBody["accountHash"]; !ok2 {
			reqBody["accountHash"] = p["accountHash"]
		}
		if _, ok2 := reqBody["passwordHash"]; !ok2 {
			reqBody["passwordHash"] = p["passwordHash"]
		}
	}

	// 参数优先级：Body > Query
	accountHash, _ := reqBody["accountHash"].(string)
	if accountHash == "" {
		accountHash = r.URL.Query().Get("accountHash")
	}

	passwordHash, _ := reqBody["passwordHash"].(string)
	if passwordHash == "" {
		passwordHash = r.URL.Query().Get("passwordHash")
	}

	resp, err := h.authService.Login(ctx, service.LoginRequest{
		AccountHash:  accountHash,
		PasswordHash: passwordHash,
		IPAddress:    getClientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		// Service 层已经记录了详细的日志，这里只记录错误
		h.logger.Error("Login failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// Refresh 用刷新令牌换新的令牌对
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil || body.RefreshToken == "" {
		writeJSON(w, http.StatusOK, Fail("refreshToken is required"))
		return
	}

	pair, err := h.authService.Refresh(ctx, body.RefreshToken)
	if err != nil {
		h.logger.Warn("Refresh failed", zap.Error(err), zap.String("ip_address", getClientIP(r)))
		writeJSON(w, http.StatusUnauthorized, FailTokenExpired("refresh token invalid or expired"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(pair))
}
