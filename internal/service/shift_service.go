package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/schedule"

	"go.uber.org/zap"
)

// Notifier 推送通知的最小接口（由 PushService 实现；投递失败不阻断业务）
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}

// ShiftService 值班服务接口
type ShiftService interface {
	// GetShift 获取单条值班（owner 本人、被指派的照护者或归属该 owner 的照护者可见）
	GetShift(ctx context.Context, callerID, shiftID string) (*domain.Shift, error)

	// CreateShift 创建值班（仅限 owner；写入时校验 end > start）
	CreateShift(ctx context.Context, req CreateShiftRequest) (*domain.Shift, error)

	// UpdateShift 编辑值班（任务清单整体替换）
	UpdateShift(ctx context.Context, req UpdateShiftRequest) error

	// DeleteShift 删除值班（仅限 owner）
	DeleteShift(ctx context.Context, callerID, shiftID string) error

	// HeroStatus 英雄卡片状态：active / next / none 三选一
	HeroStatus(ctx context.Context, req HeroStatusRequest) (*HeroStatusResponse, error)

	// DayView 某日历日的值班列表 + 当月打点
	DayView(ctx context.Context, req DayViewRequest) (*DayViewResponse, error)

	// CalendarMarks 某个月份的稀疏日历打点（不选中任何一天）
	CalendarMarks(ctx context.Context, req CalendarRequest) (map[string]schedule.DayMark, error)
}

// shiftService 实现
type shiftService struct {
	shiftsRepo   repository.ShiftsRepository
	patientsRepo repository.PatientsRepository
	usersRepo    repository.UsersRepository
	notifier     Notifier
	logger       *zap.Logger
}

// NewShiftService 创建值班服务
func NewShiftService(
	shiftsRepo repository.ShiftsRepository,
	patientsRepo repository.PatientsRepository,
	usersRepo repository.UsersRepository,
	notifier Notifier,
	logger *zap.Logger,
) ShiftService {
	return &shiftService{
		shiftsRepo:   shiftsRepo,
		patientsRepo: patientsRepo,
		usersRepo:    usersRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateShiftRequest 创建值班请求
type CreateShiftRequest struct {
	OwnerID     string
	CaregiverID string
	PatientID   string
	StartTime   time.Time
	EndTime     time.Time
	Tasks       []domain.ShiftTask
}

// UpdateShiftRequest 编辑值班请求（任务清单整体替换）
type UpdateShiftRequest struct {
	CallerID    string
	ShiftID     string
	CaregiverID string
	PatientID   string
	StartTime   time.Time
	EndTime     time.Time
	Tasks       []domain.ShiftTask
}

// HeroStatusRequest 英雄卡片请求
type HeroStatusRequest struct {
	CaregiverID string
	Now         time.Time // 零值表示取当前时间
}

// HeroStatusResponse 英雄卡片响应
type HeroStatusResponse struct {
	State string        `json:"state"` // "active" | "next" | "none"
	Label string        `json:"label,omitempty"`
	Shift *domain.Shift `json:"shift,omitempty"`
}

// DayViewRequest 日视图请求
type DayViewRequest struct {
	UserID string
	Role   string    // 'owner' 按 owner_id 查，'caregiver' 按 caregiver_id 查
	Date   time.Time // 目标日历日
}

// CalendarRequest 月历打点请求
type CalendarRequest struct {
	UserID string
	Role   string
	Year   int
	Month  time.Month
}

// DayViewResponse 日视图响应
type DayViewResponse struct {
	Shifts []domain.Shift               `json:"shifts"` // 当日值班，start 升序
	Marks  map[string]schedule.DayMark  `json:"marks"`  // 稀疏日历打点
}

// GetShift 获取单条值班
func (s *shiftService) GetShift(ctx context.Context, callerID, shiftID string) (*domain.Shift, error) {
	shift, err := s.shiftsRepo.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	// 被指派的照护者即使尚未绑定 owner 也能看到自己的值班
	if callerID != shift.CaregiverID {
		if err := authorizeOwnerScope(ctx, s.usersRepo, callerID, shift.OwnerID); err != nil {
			return nil, err
		}
	}
	return shift, nil
}

// CreateShift 创建值班
func (s *shiftService) CreateShift(ctx context.Context, req CreateShiftRequest) (*domain.Shift, error) {
	if err := validateShiftWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.OwnerID == "" || req.CaregiverID == "" || req.PatientID == "" {
		return nil, fmt.Errorf("owner, caregiver and patient are required")
	}

	// 冗余患者姓名（展示用，authoritative 数据仍在 patients 表）
	patient, err := s.patientsRepo.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patient: %w", err)
	}
	if patient.OwnerID != req.OwnerID {
		return nil, fmt.Errorf("patient does not belong to caller")
	}

	shift := &domain.Shift{
		OwnerID:     req.OwnerID,
		CaregiverID: req.CaregiverID,
		PatientID:   req.PatientID,
		PatientName: patient.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      domain.ShiftStatusScheduled,
		Tasks:       req.Tasks,
	}
	shiftID, err := s.shiftsRepo.CreateShift(ctx, shift)
	if err != nil {
		return nil, err
	}
	shift.ShiftID = shiftID

	s.logger.Info("Shift created",
		zap.String("shift_id", shiftID),
		zap.String("owner_id", req.OwnerID),
		zap.String("caregiver_id", req.CaregiverID),
	)

	// 通知被指派的照护者；失败只记日志
	if s.notifier != nil && req.CaregiverID != req.OwnerID {
		title := "New visit scheduled"
		body := fmt.Sprintf("Visit for %s on %s", patient.Name, req.StartTime.Format("Jan 2 15:04"))
		if err := s.notifier.Notify(ctx, req.CaregiverID, title, body); err != nil {
			s.logger.Warn("Failed to notify caregiver", zap.Error(err))
		}
	}
	return shift, nil
}

// UpdateShift 编辑值班
func (s *shiftService) UpdateShift(ctx context.Context, req UpdateShiftRequest) error {
	if err := validateShiftWindow(req.StartTime, req.EndTime); err != nil {
		return err
	}

	existing, err := s.shiftsRepo.GetShift(ctx, req.ShiftID)
	if err != nil {
		return err
	}
	if existing.OwnerID != req.CallerID {
		return fmt.Errorf("only the profile owner can edit shifts")
	}
	if existing.Status == domain.ShiftStatusCompleted {
		return fmt.Errorf("completed shifts cannot be edited")
	}

	patient, err := s.patientsRepo.GetPatient(ctx, req.PatientID)
	if err != nil {
		return fmt.Errorf("failed to resolve patient: %w", err)
	}
	if patient.OwnerID != req.CallerID {
		return fmt.Errorf("patient does not belong to caller")
	}

	updated := &domain.Shift{
		CaregiverID: req.CaregiverID,
		PatientID:   req.PatientID,
		PatientName: patient.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      existing.Status,
		Tasks:       req.Tasks,
	}
	return s.shiftsRepo.UpdateShift(ctx, req.ShiftID, updated)
}

// DeleteShift 删除值班
func (s *shiftService) DeleteShift(ctx context.Context, callerID, shiftID string) error {
	existing, err := s.shiftsRepo.GetShift(ctx, shiftID)
	if err != nil {
		return err
	}
	if existing.OwnerID != callerID {
		return fmt.Errorf("only the profile owner can delete shifts")
	}
	if err := s.shiftsRepo.DeleteShift(ctx, shiftID); err != nil {
		return err
	}
	s.logger.Info("Shift deleted",
		zap.String("shift_id", shiftID),
		zap.String("owner_id", callerID),
	)
	return nil
}

// HeroStatus 英雄卡片状态
func (s *shiftService) HeroStatus(ctx context.Context, req HeroStatusRequest) (*HeroStatusResponse, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	// 已完成的值班不参与英雄卡片分类（否则历史值班会永远显示 OVERDUE）
	shifts, err := s.shiftsRepo.ListShifts(ctx, &repository.ShiftFilters{
		CaregiverID:      req.CaregiverID,
		ExcludeCompleted: true,
	})
	if err != nil {
		return nil, err
	}

	hero := schedule.Classify(shifts, now)
	return &HeroStatusResponse{
		State: string(hero.State),
		Label: string(hero.Label),
		Shift: hero.Shift,
	}, nil
}

// DayView 日视图
func (s *shiftService) DayView(ctx context.Context, req DayViewRequest) (*DayViewResponse, error) {
	filters := &repository.ShiftFilters{}
	if req.Role == domain.RoleOwner {
		filters.OwnerID = req.UserID
	} else {
		filters.CaregiverID = req.UserID
	}

	shifts, err := s.shiftsRepo.ListShifts(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &DayViewResponse{
		Shifts: schedule.OnDay(shifts, req.Date),
		Marks:  schedule.MarkedDates(shifts, req.Date),
	}, nil
}

// CalendarMarks 月历打点
func (s *shiftService) CalendarMarks(ctx context.Context, req CalendarRequest) (map[string]schedule.DayMark, error) {
	if req.Year == 0 || req.Month < time.January || req.Month > time.December {
		return nil, fmt.Errorf("invalid year/month")
	}

	// 查询范围限定到该月份，打点在内存里算
	monthStart := time.Date(req.Year, req.Month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	filters := &repository.ShiftFilters{
		StartAfter:  &monthStart,
		StartBefore: &monthEnd,
	}
	if req.Role == domain.RoleOwner {
		filters.OwnerID = req.UserID
	} else {
		filters.CaregiverID = req.UserID
	}

	shifts, err := s.shiftsRepo.ListShifts(ctx, filters)
	if err != nil {
		return nil, err
	}

	marks := make(map[string]schedule.DayMark)
	for _, shift := range shifts {
		key := schedule.DateKey(shift.StartTime)
		m := marks[key]
		m.HasShifts = true
		marks[key] = m
	}
	return marks, nil
}

// validateShiftWindow 写入时的时间窗口校验（分类器不再复核）
func validateShiftWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end times are required")
	}
	if !end.After(start) {
		return fmt.Errorf("shift end must be after start")
	}
	return nil
}
