package repository

import (
	"context"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// ShiftFilters 值班查询过滤器
type ShiftFilters struct {
	OwnerID          string     // 主照护者ID
	CaregiverID      string     // 执行照护者ID
	PatientID        string     // 患者ID
	Status           string     // 状态：'scheduled'/'in_progress'/'completed'
	ExcludeCompleted bool       // 排除已完成（英雄卡片只看未完成的值班）
	StartAfter       *time.Time // start >= 该时间
	StartBefore      *time.Time // start <= 该时间
}

// ShiftsRepository 值班记录Repository接口
type ShiftsRepository interface {
	// GetShift 获取单条值班记录
	GetShift(ctx context.Context, shiftID string) (*domain.Shift, error)

	// ListShifts 批量查询值班记录（按 start 降序返回；需要升序的消费方自行重排）
	ListShifts(ctx context.Context, filters *ShiftFilters) ([]domain.Shift, error)

	// CreateShift 创建值班记录，返回生成的ID
	CreateShift(ctx context.Context, shift *domain.Shift) (string, error)

	// UpdateShift 更新值班记录（任务清单整体替换）
	UpdateShift(ctx context.Context, shiftID string, shift *domain.Shift) error

	// DeleteShift 删除值班记录（仅限 owner 操作，权限在 service 层校验）
	DeleteShift(ctx context.Context, shiftID string) error

	// SetShiftStatus 更新值班状态
	SetShiftStatus(ctx context.Context, shiftID, status string) error
}
