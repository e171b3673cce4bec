package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/service"

	"go.uber.org/zap"
)

// PatientHandler 患者档案 Handler
type PatientHandler struct {
	patientService service.PatientService
	logger         *zap.Logger
}

// NewPatientHandler 创建患者档案 Handler
func NewPatientHandler(patientService service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *PatientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 路由分发
	path := r.URL.Path
	switch {
	// ListPatients
	case path == "/care/api/v1/patients" && r.Method == http.MethodGet:
		h.ListPatients(w, r)
	// CreatePatient
	case path == "/care/api/v1/patients" && r.Method == http.MethodPost:
		h.CreatePatient(w, r)
	// GetPatient
	case strings.HasPrefix(path, "/care/api/v1/patients/") && r.Method == http.MethodGet:
		patientID := strings.TrimPrefix(path, "/care/api/v1/patients/")
		if patientID != "" && !strings.Contains(patientID, "/") {
			h.GetPatient(w, r, patientID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	// UpdatePatient
	case strings.HasPrefix(path, "/care/api/v1/patients/") && r.Method == http.MethodPut:
		patientID := strings.TrimPrefix(path, "/care/api/v1/patients/")
		if patientID != "" && !strings.Contains(patientID, "/") {
			h.UpdatePatient(w, r, patientID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	// DeletePatient
	case strings.HasPrefix(path, "/care/api/v1/patients/") && r.Method == http.MethodDelete:
		patientID := strings.TrimPrefix(path, "/care/api/v1/patients/")
		if patientID != "" && !strings.Contains(patientID, "/") {
			h.DeletePatient(w, r, patientID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// patientBody 创建/更新患者档案请求体
type patientBody struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"` // "2006-01-02"，空串表示未填
	Notes     string `json:"notes"`
	PhotoURL  string `json:"photoUrl"`
}

func (b *patientBody) toRequest(callerID string) (service.PatientRequest, error) {
	req := service.PatientRequest{
		CallerID: callerID,
		Name:     strings.TrimSpace(b.Name),
		Notes:    b.Notes,
		PhotoURL: b.PhotoURL,
	}
	if b.BirthDate != "" {
		t, err := time.Parse("2006-01-02", b.BirthDate)
		if err != nil {
			return req, err
		}
		req.BirthDate = &t
	}
	return req, nil
}

// ListPatients 列出调用者可见的患者
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	patients, err := h.patientService.ListPatients(ctx, callerID)
	if err != nil {
		h.logger.Error("ListPatients failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(patients))
	for i := range patients {
		items = append(items, patientDTO(&patients[i]))
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

// GetPatient 获取患者档案
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request, patientID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	patient, err := h.patientService.GetPatient(ctx, callerID, patientID)
	if err != nil {
		h.logger.Error("GetPatient failed", zap.Error(err), zap.String("patient_id", patientID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(patientDTO(patient)))
}

// CreatePatient 创建患者档案（仅限 owner）
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body patientBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	req, err := body.toRequest(callerID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("birthDate must be in YYYY-MM-DD format"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusOK, Fail("name is required"))
		return
	}

	patient, err := h.patientService.CreatePatient(ctx, req)
	if err != nil {
		h.logger.Error("CreatePatient failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(patientDTO(patient)))
}

// UpdatePatient 更新患者档案（仅限 owner）
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request, patientID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	var body patientBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	req, err := body.toRequest(callerID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("birthDate must be in YYYY-MM-DD format"))
		return
	}

	if err := h.patientService.UpdatePatient(ctx, patientID, req); err != nil {
		h.logger.Error("UpdatePatient failed", zap.Error(err), zap.String("patient_id", patientID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"patientId": patientID}))
}

// DeletePatient 删除患者档案（仅限 owner）
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request, patientID string) {
	ctx := r.Context()
	callerID, _ := callerFromCtx(ctx)

	if err := h.patientService.DeletePatient(ctx, callerID, patientID); err != nil {
		h.logger.Error("DeletePatient failed", zap.Error(err), zap.String("patient_id", patientID))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"patientId": patientID}))
}

// patientDTO DB 行 → 响应 DTO
func patientDTO(p *domain.Patient) map[string]any {
	dto := map[string]any{
		"patientId": p.PatientID,
		"ownerId":   p.OwnerID,
		"name":      p.Name,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
	if p.BirthDate.Valid {
		dto["birthDate"] = p.BirthDate.Time.Format("2006-01-02")
	}
	if p.Notes.Valid {
		dto["notes"] = p.Notes.String
	}
	if p.PhotoURL.Valid {
		dto["photoUrl"] = p.PhotoURL.String
	}
	return dto
}
