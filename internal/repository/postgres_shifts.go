package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// PostgresShiftsRepository 值班记录Repository实现
type PostgresShiftsRepository struct {
	db *sql.DB
}

// NewPostgresShiftsRepository 创建值班记录Repository
func NewPostgresShiftsRepository(db *sql.DB) *PostgresShiftsRepository {
	return &PostgresShiftsRepository{db: db}
}

// 确保实现了接口
var _ ShiftsRepository = (*PostgresShiftsRepository)(nil)

const shiftColumns = `
	shift_id::text,
	owner_id::text,
	caregiver_id::text,
	patient_id::text,
	patient_name,
	start_time,
	end_time,
	status,
	tasks,
	created_at,
	updated_at`

// GetShift 获取单条值班记录
func (r *PostgresShiftsRepository) GetShift(ctx context.Context, shiftID string) (*domain.Shift, error) {
	if shiftID == "" {
		return nil, sql.ErrNoRows
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE shift_id = $1`

	row := r.db.QueryRowContext(ctx, query, shiftID)
	shift, err := scanShift(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("shift not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

// ListShifts 批量查询值班记录（按 start 降序）
func (r *PostgresShiftsRepository) ListShifts(ctx context.Context, filters *ShiftFilters) ([]domain.Shift, error) {
	where := []string{"1=1"}
	args := []any{}
	argN := 1

	if filters != nil {
		if filters.OwnerID != "" {
			where = append(where, fmt.Sprintf("owner_id = $%d", argN))
			args = append(args, filters.OwnerID)
			argN++
		}
		if filters.CaregiverID != "" {
			where = append(where, fmt.Sprintf("caregiver_id = $%d", argN))
			args = append(args, filters.CaregiverID)
			argN++
		}
		if filters.PatientID != "" {
			where = append(where, fmt.Sprintf("patient_id = $%d", argN))
			args = append(args, filters.PatientID)
			argN++
		}
		if filters.Status != "" {
			where = append(where, fmt.Sprintf("status = $%d", argN))
			args = append(args, filters.Status)
			argN++
		}
		if filters.ExcludeCompleted {
			where = append(where, fmt.Sprintf("status <> $%d", argN))
			args = append(args, domain.ShiftStatusCompleted)
			argN++
		}
		if filters.StartAfter != nil {
			where = append(where, fmt.Sprintf("start_time >= $%d", argN))
			args = append(args, *filters.StartAfter)
			argN++
		}
		if filters.StartBefore != nil {
			where = append(where, fmt.Sprintf("start_time <= $%d", argN))
			args = append(args, *filters.StartBefore)
			argN++
		}
	}

	query := `SELECT ` + shiftColumns + `
		FROM shifts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := []domain.Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}
	return shifts, nil
}

// CreateShift 创建值班记录
func (r *PostgresShiftsRepository) CreateShift(ctx context.Context, shift *domain.Shift) (string, error) {
	shiftID := shift.ShiftID
	if shiftID == "" {
		shiftID = uuid.NewString()
	}

	tasksJSON, err := json.Marshal(tasksOrEmpty(shift.Tasks))
	if err != nil {
		return "", fmt.Errorf("failed to marshal tasks: %w", err)
	}

	query := `
		INSERT INTO shifts (shift_id, owner_id, caregiver_id, patient_id, patient_name, start_time, end_time, status, tasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		shiftID,
		shift.OwnerID,
		shift.CaregiverID,
		shift.PatientID,
		shift.PatientName,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		tasksJSON,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create shift: %w", err)
	}
	return shiftID, nil
}

// UpdateShift 更新值班记录（任务清单整体替换，不做diff）
func (r *PostgresShiftsRepository) UpdateShift(ctx context.Context, shiftID string, shift *domain.Shift) error {
	if shiftID == "" {
		return sql.ErrNoRows
	}

	tasksJSON, err := json.Marshal(tasksOrEmpty(shift.Tasks))
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	query := `
		UPDATE shifts
		SET caregiver_id = $2,
		    patient_id = $3,
		    patient_name = $4,
		    start_time = $5,
		    end_time = $6,
		    status = $7,
		    tasks = $8,
		    updated_at = CURRENT_TIMESTAMP
		WHERE shift_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		shiftID,
		shift.CaregiverID,
		shift.PatientID,
		shift.PatientName,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		tasksJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	return nil
}

// DeleteShift 删除值班记录
func (r *PostgresShiftsRepository) DeleteShift(ctx context.Context, shiftID string) error {
	if shiftID == "" {
		return sql.ErrNoRows
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE shift_id = $1`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	return nil
}

// SetShiftStatus 更新值班状态
func (r *PostgresShiftsRepository) SetShiftStatus(ctx context.Context, shiftID, status string) error {
	if shiftID == "" {
		return sql.ErrNoRows
	}

	query := `UPDATE shifts SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE shift_id = $1`
	res, err := r.db.ExecContext(ctx, query, shiftID, status)
	if err != nil {
		return fmt.Errorf("failed to set shift status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift not found: %w", sql.ErrNoRows)
	}
	return nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanShift 扫描一行值班记录（tasks JSONB 反序列化）
func scanShift(row rowScanner) (*domain.Shift, error) {
	var shift domain.Shift
	var tasksJSON []byte

	err := row.Scan(
		&shift.ShiftID,
		&shift.OwnerID,
		&shift.CaregiverID,
		&shift.PatientID,
		&shift.PatientName,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Status,
		&tasksJSON,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	shift.Tasks = []domain.ShiftTask{}
	if len(tasksJSON) > 0 {
		if err := json.Unmarshal(tasksJSON, &shift.Tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tasks: %w", err)
		}
	}
	return &shift, nil
}

// tasksOrEmpty 保证 tasks 序列化为 '[]' 而不是 'null'
func tasksOrEmpty(tasks []domain.ShiftTask) []domain.ShiftTask {
	if tasks == nil {
		return []domain.ShiftTask{}
	}
	return tasks
}
