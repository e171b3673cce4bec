package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// ShiftHandler 值班 Handler
type ShiftHandler struct {
	shiftService service.ShiftService
	logger       *zap.Logger
}

// NewShiftHandler 创建值班 Handler
func NewShiftHandler(shiftService service.ShiftService, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{
		shiftService: shiftService,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ShiftHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	path := r.URL.Path
	switch {
	// CreateShift
	case path == "/care/api/v1/shifts" && r.Method == http.MethodPost:
		h.CreateShift(w, r)
	// HeroStatus
	case path == "/care/api/v1/shifts/hero" && r.Method == http.MethodGet:
		h.HeroStatus(w, r)
	// DayView
	case path == "/care/api/v1/shifts/day" && r.Method == http.MethodGet:
		h.DayView(w, r)
	// CalendarMarks
	case path == "/care/api/v1/shifts/calendar" && r.Method == http.MethodGet:
		h.CalendarMarks(w, r)
	// GetShift
	case strings.HasPrefix(path, "/care/api/v1/shifts/") && r.Method == http.MethodGet:
		shiftID := strings.TrimPrefix(path, "/care/api/v1/shifts/")
		if shiftID != "" && !strings.Contains(shiftID, "/") {
			h.GetShift(w, r, shiftID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	// UpdateShift
	case strings.HasPrefix(path, "/care/api/v1/shifts/") && r.Method == http.MethodPut:
		shiftID := strings.TrimPrefix(path, "/care/api/v1/shifts/")
		if shiftID != "" && !strings.Contains(shiftID, "/") {
			h.UpdateShift(w, r, shiftID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	// DeleteShift
	case strings.HasPrefix(path, "/care/api/v1/shifts/") && r.Method == http.MethodDelete:
		shiftID := strings.TrimPrefix(path, "/care/api/v1/shifts/")
		if shiftID != "" && !strings.Contains(shiftID, "/") {
			h.DeleteShift(w, r, shiftID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// shiftBody 创建/编辑值班的请求体
type shiftBody struct {
	CaregiverID string             `json:"caregiverId"`
	PatientID   string             `json:"patientId"`
	StartTime   time.Time          `json:"startTime"`
	EndTime     time.Time          `json:"endTime"`
	Tasks       []domain.ShiftTask `json:"tasks"`
}

// CreateShift 创建值班（仅限 owner）
func (h *ShiftHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body shiftBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	if body.CaregiverID == "" || body.PatientID == "" {
		writeJSON(w, http.StatusOK, Fail("caregiverId and patientId are required"))
		return
	}

	shift, err := h.shiftService.CreateShift(ctx, service.CreateShiftRequest{
		OwnerID:     callerID,
		CaregiverID: body.CaregiverID,
		PatientID:   body.PatientID,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Tasks:       body.Tasks,
	})
	if err != nil {
		h.logger.Error("CreateShift failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(shiftDTO(shift)))
}

// GetShift 获取单条值班
func (h *ShiftHandler) GetShift(w http.ResponseWriter, r *http.Request, shiftID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	shift, err := h.shiftService.GetShift(ctx, callerID, shiftID)
	if err != nil {
		h.logger.Error("GetShift failed", zap.Error(err), zap.String("shift_id", shiftID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(shiftDTO(shift)))
}

// UpdateShift 编辑值班（任务清单整体替换）
func (h *ShiftHandler) UpdateShift(w http.ResponseWriter, r *http.Request, shiftID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body shiftBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	err := h.shiftService.UpdateShift(ctx, service.UpdateShiftRequest{
		CallerID:    callerID,
		ShiftID:     shiftID,
		CaregiverID: body.CaregiverID,
		PatientID:   body.PatientID,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Tasks:       body.Tasks,
	})
	if err != nil {
		h.logger.Error("UpdateShift failed", zap.Error(err), zap.String("shift_id", shiftID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"shiftId": shiftID}))
}

// DeleteShift 删除值班（仅限 owner）
func (h *ShiftHandler) DeleteShift(w http.ResponseWriter, r *http.Request, shiftID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	if err := h.shiftService.DeleteShift(ctx, callerID, shiftID); err != nil {
		h.logger.Error("DeleteShift failed", zap.Error(err), zap.String("shift_id", shiftID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"shiftId": shiftID}))
}

// HeroStatus 英雄卡片：active / next / none
func (h *ShiftHandler) HeroStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	resp, err := h.shiftService.HeroStatus(ctx, service.HeroStatusRequest{CaregiverID: callerID})
	if err != nil {
		h.logger.Error("HeroStatus failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	result := map[string]any{
		"state": resp.State,
	}
	if resp.Label != "" {
		result["label"] = resp.Label
	}
	if resp.Shift != nil {
		result["shift"] = shiftDTO(resp.Shift)
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// DayView 日视图：当日值班列表 + 当月稀疏打点
func (h *ShiftHandler) DayView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, role := callerFromCtx(ctx)

	dateStr := r.URL.Query().Get("date")
	date, err := parseDate(dateStr)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("date must be in YYYY-MM-DD format"))
		return
	}

	resp, err := h.shiftService.DayView(ctx, service.DayViewRequest{
		UserID: callerID,
		Role:   role,
		Date:   date,
	})
	if err != nil {
		h.logger.Error("DayView failed", zap.Error(err), zap.String("date", dateStr))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	shifts := make([]map[string]any, 0, len(resp.Shifts))
	for i := range resp.Shifts {
		shifts = append(shifts, shiftDTO(&resp.Shifts[i]))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"shifts": shifts,
		"marks":  resp.Marks,
	}))
}

// CalendarMarks 月历打点：month=YYYY-MM
func (h *ShiftHandler) CalendarMarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, role := callerFromCtx(ctx)

	monthStr := r.URL.Query().Get("month")
	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("month must be in YYYY-MM format"))
		return
	}

	marks, err := h.shiftService.CalendarMarks(ctx, service.CalendarRequest{
		UserID: callerID,
		Role:   role,
		Year:   month.Year(),
		Month:  month.Month(),
	})
	if err != nil {
		h.logger.Error("CalendarMarks failed", zap.Error(err), zap.String("month", monthStr))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"marks": marks}))
}

// shiftDTO DB 行 → 响应 DTO
func shiftDTO(s *domain.Shift) map[string]any {
	tasks := s.Tasks
	if tasks == nil {
		tasks = []domain.ShiftTask{}
	}
	return map[string]any{
		"shiftId":     s.ShiftID,
		"ownerId":     s.OwnerID,
		"caregiverId": s.CaregiverID,
		"patientId":   s.PatientID,
		"patientName": s.PatientName,
		"startTime":   s.StartTime,
		"endTime":     s.EndTime,
		"status":      s.Status,
		"tasks":       tasks,
		"createdAt":   s.CreatedAt,
		"updatedAt":   s.UpdatedAt,
	}
}
