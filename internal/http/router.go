package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册认证路由（无需令牌）
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/auth/api/v1/register", h.ServeHTTP)
	r.Handle("/auth/api/v1/login", h.ServeHTTP)
	r.Handle("/auth/api/v1/refresh", h.ServeHTTP)
}

// RegisterCareRoutes 注册业务路由（Bearer 令牌保护）
func (r *Router) RegisterCareRoutes(
	auth *AuthMiddleware,
	shifts *ShiftHandler,
	patients *PatientHandler,
	reports *ReportHandler,
	invites *InviteHandler,
	stats *StatsHandler,
	push *PushHandler,
) {
	// shifts（含 /hero 与 /day）
	r.Handle("/care/api/v1/shifts", auth.Require(shifts.ServeHTTP))
	r.Handle("/care/api/v1/shifts/", auth.Require(shifts.ServeHTTP))

	// patients
	r.Handle("/care/api/v1/patients", auth.Require(patients.ServeHTTP))
	r.Handle("/care/api/v1/patients/", auth.Require(patients.ServeHTTP))

	// visit reports
	r.Handle("/care/api/v1/reports", auth.Require(reports.ServeHTTP))
	r.Handle("/care/api/v1/reports/", auth.Require(reports.ServeHTTP))

	// invites
	r.Handle("/care/api/v1/invites", auth.Require(invites.ServeHTTP))
	r.Handle("/care/api/v1/invites/", auth.Require(invites.ServeHTTP))

	// monthly stats
	r.Handle("/care/api/v1/stats/monthly", auth.Require(stats.ServeHTTP))
	r.Handle("/care/api/v1/stats/monthly/export", auth.Require(stats.ServeHTTP))

	// push tokens
	r.Handle("/care/api/v1/push/tokens", auth.Require(push.ServeHTTP))
}

// RegisterHealthRoutes 健康检查（给负载均衡/容器探针用）
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
