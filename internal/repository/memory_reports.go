package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// MemoryReportsRepository: 用于 DB 未就绪时的联测
type MemoryReportsRepository struct {
	mu      sync.RWMutex
	reports map[string]domain.VisitReport // reportID -> VisitReport
}

func NewMemoryReportsRepository() *MemoryReportsRepository {
	return &MemoryReportsRepository{
		reports: map[string]domain.VisitReport{},
	}
}

var _ ReportsRepository = (*MemoryReportsRepository)(nil)

func (r *MemoryReportsRepository) GetReportByShift(_ context.Context, shiftID string) (*domain.VisitReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rep := range r.reports {
		if rep.ShiftID == shiftID {
			return &rep, nil
		}
	}
	return nil, fmt.Errorf("report not found: %w", sql.ErrNoRows)
}

func (r *MemoryReportsRepository) ListReportsByPatient(_ context.Context, patientID string) ([]domain.VisitReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.VisitReport{}
	for _, rep := range r.reports {
		if rep.PatientID == patientID {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryReportsRepository) CreateReport(_ context.Context, report *domain.VisitReport) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// shift_id 唯一：每次值班至多一份报告
	for _, rep := range r.reports {
		if rep.ShiftID == report.ShiftID {
			return "", fmt.Errorf("report already filed for shift %s", report.ShiftID)
		}
	}

	rep := *report
	if rep.ReportID == "" {
		rep.ReportID = uuid.NewString()
	}
	rep.CreatedAt = time.Now()
	r.reports[rep.ReportID] = rep
	return rep.ReportID, nil
}
