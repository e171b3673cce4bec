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

// MemoryShiftsRepository: 用于 DB 未就绪时的联测（排班/日历页面的最小闭环）
// - IDs 使用 uuid
// - 返回顺序与 Postgres 实现一致（start 降序）
type MemoryShiftsRepository struct {
	mu     sync.RWMutex
	shifts map[string]domain.Shift // shiftID -> Shift
}

func NewMemoryShiftsRepository() *MemoryShiftsRepository {
	return &MemoryShiftsRepository{
		shifts: map[string]domain.Shift{},
	}
}

var _ ShiftsRepository = (*MemoryShiftsRepository)(nil)

func (r *MemoryShiftsRepository) GetShift(_ context.Context, shiftID string) (*domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shifts[shiftID]
	if !ok {
		return nil, fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	return &s, nil
}

func (r *MemoryShiftsRepository) ListShifts(_ context.Context, filters *ShiftFilters) ([]domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Shift{}
	for _, s := range r.shifts {
		if !matchShift(&s, filters) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (r *MemoryShiftsRepository) CreateShift(_ context.Context, shift *domain.Shift) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := *shift
	if s.ShiftID == "" {
		s.ShiftID = uuid.NewString()
	}
	if s.Tasks == nil {
		s.Tasks = []domain.ShiftTask{}
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.shifts[s.ShiftID] = s
	return s.ShiftID, nil
}

func (r *MemoryShiftsRepository) UpdateShift(_ context.Context, shiftID string, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	s := *shift
	s.ShiftID = shiftID
	s.OwnerID = old.OwnerID
	s.CreatedAt = old.CreatedAt
	s.UpdatedAt = time.Now()
	if s.Tasks == nil {
		s.Tasks = []domain.ShiftTask{}
	}
	r.shifts[shiftID] = s
	return nil
}

func (r *MemoryShiftsRepository) DeleteShift(_ context.Context, shiftID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shifts[shiftID]; !ok {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	delete(r.shifts, shiftID)
	return nil
}

func (r *MemoryShiftsRepository) SetShiftStatus(_ context.Context, shiftID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shifts[shiftID]
	if !ok {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	r.shifts[shiftID] = s
	return nil
}

func matchShift(s *domain.Shift, f *ShiftFilters) bool {
	if f == nil {
		return true
	}
	if f.OwnerID != "" && s.OwnerID != f.OwnerID {
		return false
	}
	if f.CaregiverID != "" && s.CaregiverID != f.CaregiverID {
		return false
	}
	if f.PatientID != "" && s.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.ExcludeCompleted && s.Status == domain.ShiftStatusCompleted {
		return false
	}
	if f.StartAfter != nil && s.StartTime.Before(*f.StartAfter) {
		return false
	}
	if f.StartBefore != nil && s.StartTime.After(*f.StartBefore) {
		return false
	}
	return true
}
