package repository

import (
	"context"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// ReportsRepository 探访报告Repository接口
type ReportsRepository interface {
	// GetReportByShift 获取某次值班的探访报告（每次值班至多一份）
	GetReportByShift(ctx context.Context, shiftID string) (*domain.VisitReport, error)

	// ListReportsByPatient 列出某患者的历史探访报告（按时间降序）
	ListReportsByPatient(ctx context.Context, patientID string) ([]domain.VisitReport, error)

	// CreateReport 创建探访报告，返回生成的ID
	CreateReport(ctx context.Context, report *domain.VisitReport) (string, error)
}
