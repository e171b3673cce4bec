package httpapi

import (
	"net/http"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// InviteHandler 邀请码 Handler
type InviteHandler struct {
	inviteService service.InviteService
	logger        *zap.Logger
}

// NewInviteHandler 创建邀请码 Handler
func NewInviteHandler(inviteService service.InviteService, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/care/api/v1/invites":
		switch r.Method {
		case http.MethodPost:
			h.GenerateInvite(w, r)
		case http.MethodGet:
			h.ListRedemptions(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "/care/api/v1/invites/redeem":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.RedeemInvite(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// GenerateInvite 生成一次性邀请码（仅限 owner）
func (h *InviteHandler) GenerateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	resp, err := h.inviteService.GenerateInvite(ctx, callerID)
	if err != nil {
		h.logger.Error("GenerateInvite failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// RedeemInvite 兑换邀请码，绑定到主照护者
func (h *InviteHandler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body struct {
		Code string `json:"code"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if code == "" {
		writeJSON(w, http.StatusOK, Fail("code is required"))
		return
	}

	resp, err := h.inviteService.RedeemInvite(ctx, service.RedeemInviteRequest{
		CaregiverID: callerID,
		Code:        code,
	})
	if err != nil {
		h.logger.Warn("RedeemInvite failed", zap.Error(err), zap.String("ip_address", getClientIP(r)))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ListRedemptions 主照护者查看兑换历史
func (h *InviteHandler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	invites, err := h.inviteService.ListRedemptions(ctx, callerID)
	if err != nil {
		h.logger.Error("ListRedemptions failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(invites))
	for _, inv := range invites {
		items = append(items, map[string]any{
			"inviteId":    inv.InviteID,
			"ownerId":     inv.OwnerID,
			"caregiverId": inv.CaregiverID,
			"code":        inv.Code,
			"redeemedAt":  inv.RedeemedAt,
		})
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}
