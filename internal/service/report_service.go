package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"

	"go.uber.org/zap"
)

// ReportService 探访报告服务接口
type ReportService interface {
	// FileReport 提交探访报告并把值班置为 completed
	FileReport(ctx context.Context, req FileReportRequest) (*domain.VisitReport, error)

	// GetReportByShift 查看某次值班的报告（owner 一方或被指派的照护者可见）
	GetReportByShift(ctx context.Context, callerID, shiftID string) (*domain.VisitReport, error)

	// ListReportsByPatient 查看某患者的历史报告（owner 一方可见）
	ListReportsByPatient(ctx context.Context, callerID, patientID string) ([]domain.VisitReport, error)
}

// reportService 实现
type reportService struct {
	reportsRepo  repository.ReportsRepository
	shiftsRepo   repository.ShiftsRepository
	patientsRepo repository.PatientsRepository
	usersRepo    repository.UsersRepository
	notifier     Notifier
	logger       *zap.Logger
}

// NewReportService 创建探访报告服务
func NewReportService(
	reportsRepo repository.ReportsRepository,
	shiftsRepo repository.ShiftsRepository,
	patientsRepo repository.PatientsRepository,
	usersRepo repository.UsersRepository,
	notifier Notifier,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reportsRepo:  reportsRepo,
		shiftsRepo:   shiftsRepo,
		patientsRepo: patientsRepo,
		usersRepo:    usersRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// FileReportRequest 提交探访报告请求
type FileReportRequest struct {
	CallerID string
	ShiftID  string
	Mood     int // 1-5
	Energy   int // 1-5
	Notes    string
	Tasks    []domain.ShiftTask // 勾选后的任务清单（整体替换）
}

// FileReport 提交探访报告
func (s *reportService) FileReport(ctx context.Context, req FileReportRequest) (*domain.VisitReport, error) {
	if req.Mood < 1 || req.Mood > 5 || req.Energy < 1 || req.Energy > 5 {
		return nil, fmt.Errorf("mood and energy must be between 1 and 5")
	}

	shift, err := s.shiftsRepo.GetShift(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.CaregiverID != req.CallerID {
		return nil, fmt.Errorf("only the assigned caregiver can file a report")
	}
	if shift.Status == domain.ShiftStatusCompleted {
		return nil, fmt.Errorf("shift already completed")
	}

	// 任务勾选状态随报告一并提交（整体替换）
	tasks := req.Tasks
	if tasks == nil {
		tasks = shift.Tasks
	}
	done := 0
	for _, task := range tasks {
		if task.IsDone {
			done++
		}
	}

	report := &domain.VisitReport{
		ShiftID:     req.ShiftID,
		CaregiverID: req.CallerID,
		PatientID:   shift.PatientID,
		Mood:        req.Mood,
		Energy:      req.Energy,
		TasksDone:   done,
		TasksTotal:  len(tasks),
	}
	if req.Notes != "" {
		report.Notes = sql.NullString{String: req.Notes, Valid: true}
	}

	reportID, err := s.reportsRepo.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ReportID = reportID

	// 任务状态写回 + 状态流转到 completed
	updated := *shift
	updated.Tasks = tasks
	updated.Status = domain.ShiftStatusCompleted
	if err := s.shiftsRepo.UpdateShift(ctx, shift.ShiftID, &updated); err != nil {
		// 报告已写入但状态流转失败：该值班仍会出现在英雄卡片上，记错误待人工处理
		s.logger.Error("Failed to complete shift after filing report",
			zap.String("shift_id", shift.ShiftID),
			zap.String("report_id", reportID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to complete shift: %w", err)
	}

	s.logger.Info("Visit report filed",
		zap.String("shift_id", req.ShiftID),
		zap.String("report_id", reportID),
		zap.String("caregiver_id", req.CallerID),
	)

	// 通知主照护者
	if s.notifier != nil && shift.OwnerID != req.CallerID {
		body := fmt.Sprintf("Visit report for %s was filed", shift.PatientName)
		if err := s.notifier.Notify(ctx, shift.OwnerID, "Visit completed", body); err != nil {
			s.logger.Warn("Failed to notify owner about report", zap.Error(err))
		}
	}
	return report, nil
}

// GetReportByShift 查看某次值班的报告
func (s *reportService) GetReportByShift(ctx context.Context, callerID, shiftID string) (*domain.VisitReport, error) {
	shift, err := s.shiftsRepo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if callerID != shift.CaregiverID {
		if err := authorizeOwnerScope(ctx, s.usersRepo, callerID, shift.OwnerID); err != nil {
			return nil, err
		}
	}
	return s.reportsRepo.GetReportByShift(ctx, shiftID)
}

// ListReportsByPatient 查看某患者的历史报告
func (s *reportService) ListReportsByPatient(ctx context.Context, callerID, patientID string) ([]domain.VisitReport, error) {
	patient, err := s.patientsRepo.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerScope(ctx, s.usersRepo, callerID, patient.OwnerID); err != nil {
		return nil, err
	}
	return s.reportsRepo.ListReportsByPatient(ctx, patientID)
}
