package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// PostgresReportsRepository 探访报告Repository实现
type PostgresReportsRepository struct {
	db *sql.DB
}

// NewPostgresReportsRepository 创建探访报告Repository
func NewPostgresReportsRepository(db *sql.DB) *PostgresReportsRepository {
	return &PostgresReportsRepository{db: db}
}

// 确保实现了接口
var _ ReportsRepository = (*PostgresReportsRepository)(nil)

const reportColumns = `
	report_id::text,
	shift_id::text,
	caregiver_id::text,
	patient_id::text,
	mood,
	energy,
	notes,
	tasks_done,
	tasks_total,
	created_at`

// GetReportByShift 获取某次值班的探访报告
func (r *PostgresReportsRepository) GetReportByShift(ctx context.Context, shiftID string) (*domain.VisitReport, error) {
	if shiftID == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + reportColumns + ` FROM visit_reports WHERE shift_id = $1`
	report, err := scanReport(r.db.QueryRowContext(ctx, query, shiftID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListReportsByPatient 列出某患者的历史探访报告
func (r *PostgresReportsRepository) ListReportsByPatient(ctx context.Context, patientID string) ([]domain.VisitReport, error) {
	if patientID == "" {
		return []domain.VisitReport{}, nil
	}

	query := `SELECT ` + reportColumns + ` FROM visit_reports WHERE patient_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.VisitReport{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

// CreateReport 创建探访报告
func (r *PostgresReportsRepository) CreateReport(ctx context.Context, report *domain.VisitReport) (string, error) {
	reportID := report.ReportID
	if reportID == "" {
		reportID = uuid.NewString()
	}

	query := `
		INSERT INTO visit_reports (report_id, shift_id, caregiver_id, patient_id, mood, energy, notes, tasks_done, tasks_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		reportID,
		report.ShiftID,
		report.CaregiverID,
		report.PatientID,
		report.Mood,
		report.Energy,
		report.Notes,
		report.TasksDone,
		report.TasksTotal,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	return reportID, nil
}

// scanReport 扫描一行探访报告记录
func scanReport(row rowScanner) (*domain.VisitReport, error) {
	var report domain.VisitReport
	err := row.Scan(
		&report.ReportID,
		&report.ShiftID,
		&report.CaregiverID,
		&report.PatientID,
		&report.Mood,
		&report.Energy,
		&report.Notes,
		&report.TasksDone,
		&report.TasksTotal,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
