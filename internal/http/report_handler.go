package httpapi

import (
	"net/http"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// ReportHandler 探访报告 Handler
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler 创建探访报告 Handler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	path := r.URL.Path
	switch {
	// FileReport
	case path == "/care/api/v1/reports" && r.Method == http.MethodPost:
		h.FileReport(w, r)
	// GetReportByShift
	case strings.HasPrefix(path, "/care/api/v1/reports/shift/") && r.Method == http.MethodGet:
		shiftID := strings.TrimPrefix(path, "/care/api/v1/reports/shift/")
		if shiftID != "" && !strings.Contains(shiftID, "/") {
			h.GetReportByShift(w, r, shiftID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	// ListReportsByPatient
	case strings.HasPrefix(path, "/care/api/v1/reports/patient/") && r.Method == http.MethodGet:
		patientID := strings.TrimPrefix(path, "/care/api/v1/reports/patient/")
		if patientID != "" && !strings.Contains(patientID, "/") {
			h.ListReportsByPatient(w, r, patientID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// FileReport 提交探访报告（值班随之置为 completed）
func (h *ReportHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body struct {
		ShiftID string             `json:"shiftId"`
		Mood    int                `json:"mood"`
		Energy  int                `json:"energy"`
		Notes   string             `json:"notes"`
		Tasks   []domain.ShiftTask `json:"tasks"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	if body.ShiftID == "" {
		writeJSON(w, http.StatusOK, Fail("shiftId is required"))
		return
	}

	report, err := h.reportService.FileReport(ctx, service.FileReportRequest{
		CallerID: callerID,
		ShiftID:  body.ShiftID,
		Mood:     body.Mood,
		Energy:   body.Energy,
		Notes:    body.Notes,
		Tasks:    body.Tasks,
	})
	if err != nil {
		h.logger.Error("FileReport failed", zap.Error(err), zap.String("shift_id", body.ShiftID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(reportDTO(report)))
}

// GetReportByShift 查看某次值班的报告
func (h *ReportHandler) GetReportByShift(w http.ResponseWriter, r *http.Request, shiftID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	report, err := h.reportService.GetReportByShift(ctx, callerID, shiftID)
	if err != nil {
		h.logger.Error("GetReportByShift failed", zap.Error(err), zap.String("shift_id", shiftID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(reportDTO(report)))
}

// ListReportsByPatient 查看某患者的历史报告（新→旧）
func (h *ReportHandler) ListReportsByPatient(w http.ResponseWriter, r *http.Request, patientID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	reports, err := h.reportService.ListReportsByPatient(ctx, callerID, patientID)
	if err != nil {
		h.logger.Error("ListReportsByPatient failed", zap.Error(err), zap.String("patient_id", patientID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(reports))
	for i := range reports {
		items = append(items, reportDTO(&reports[i]))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

// reportDTO DB 行 → 响应 DTO
func reportDTO(rep *domain.VisitReport) map[string]any {
	dto := map[string]any{
		"reportId":    rep.ReportID,
		"shiftId":     rep.ShiftID,
		"caregiverId": rep.CaregiverID,
		"patientId":   rep.PatientID,
		"mood":        rep.Mood,
		"energy":      rep.Energy,
		"tasksDone":   rep.TasksDone,
		"tasksTotal":  rep.TasksTotal,
		"createdAt":   rep.CreatedAt,
	}
	if rep.Notes.Valid {
		dto["notes"] = rep.Notes.String
	}
	return dto
}
