package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// StatsHandler 月度统计 Handler
type StatsHandler struct {
	statsService service.StatsService
	logger       *zap.Logger
}

// NewStatsHandler 创建月度统计 Handler
func NewStatsHandler(statsService service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	switch r.URL.Path {
	case "/care/api/v1/stats/monthly":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MonthlyStats(w, r)
	case "/care/api/v1/stats/monthly/export":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportMonthlyStats(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// statsRequestFromQuery year/month 缺省取当前月
func statsRequestFromQuery(r *http.Request, callerID, role string) service.MonthlyStatsRequest {
	now := time.Now().UTC()
	year := parseInt(r.URL.Query().Get("year"), now.Year())
	month := parseInt(r.URL.Query().Get("month"), int(now.Month()))
	return service.MonthlyStatsRequest{
		UserID: callerID,
		Role:   role,
		Year:   year,
		Month:  time.Month(month),
	}
}

// MonthlyStats 月度小时统计
func (h *StatsHandler) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, role := callerFromCtx(ctx)

	req := statsRequestFromQuery(r, callerID, role)
	if req.Month < time.January || req.Month > time.December {
		writeJSON(w, http.StatusOK, Fail("month must be between 1 and 12"))
		return
	}

	resp, err := h.statsService.MonthlyStats(ctx, req)
	if err != nil {
		h.logger.Error("MonthlyStats failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}

// ExportMonthlyStats 导出月度统计 Excel
func (h *StatsHandler) ExportMonthlyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, role := callerFromCtx(ctx)

	req := statsRequestFromQuery(r, callerID, role)
	if req.Month < time.January || req.Month > time.December {
		writeJSON(w, http.StatusOK, Fail("month must be between 1 and 12"))
		return
	}

	data, err := h.statsService.ExportMonthlyStats(ctx, req)
	if err != nil {
		h.logger.Error("ExportMonthlyStats failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	filename := fmt.Sprintf("care-hours-%04d-%02d.xlsx", req.Year, int(req.Month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
