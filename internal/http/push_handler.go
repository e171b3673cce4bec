package httpapi

import (
	"net/http"

	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// PushHandler 推送令牌 Handler
type PushHandler struct {
	pushService *service.PushService
	logger      *zap.Logger
}

// NewPushHandler 创建推送令牌 Handler
func NewPushHandler(pushService *service.PushService, logger *zap.Logger) *PushHandler {
	return &PushHandler{
		pushService: pushService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *PushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/care/api/v1/push/tokens" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.RegisterToken(w, r)
	case http.MethodDelete:
		h.UnregisterToken(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *PushHandler) readToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Token string `json:"token"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil || body.Token == "" {
		writeJSON(w, http.StatusOK, Fail("token is required"))
		return "", false
	}
	return body.Token, true
}

// RegisterToken 登记设备推送令牌
func (h *PushHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	token, ok := h.readToken(w, r)
	if !ok {
		return
	}

	if err := h.pushService.RegisterToken(ctx, callerID, token); err != nil {
		h.logger.Error("RegisterToken failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"registered": true}))
}

// UnregisterToken 注销设备推送令牌（登出时调用）
func (h *PushHandler) UnregisterToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	token, ok := h.readToken(w, r)
	if !ok {
		return
	}

	if err := h.pushService.UnregisterToken(ctx, callerID, token); err != nil {
		h.logger.Error("UnregisterToken failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"unregistered": true}))
}
