package domain

import "time"

// Shift 状态（生命周期：scheduled → in_progress → completed）
const (
	ShiftStatusScheduled  = "scheduled"
	ShiftStatusInProgress = "in_progress"
	ShiftStatusCompleted  = "completed"
)

// ShiftTask 值班任务清单项（JSONB数组元素，编辑时整体替换，不做diff）
type ShiftTask struct {
	Description string `json:"description"`
	IsDone      bool   `json:"isDone"`
}

// Shift 值班记录领域模型（对应 shifts 表）
// 记录一次到家照护的排班：时间窗口 + 负责照护者 + 任务清单
type Shift struct {
	// 主键
	ShiftID string `db:"shift_id"` // UUID, PRIMARY KEY

	// 关联方
	OwnerID     string `db:"owner_id"`     // UUID, NOT NULL, FK to users（主照护者）
	CaregiverID string `db:"caregiver_id"` // UUID, NOT NULL, FK to users（执行照护者）
	PatientID   string `db:"patient_id"`   // UUID, NOT NULL, FK to patients

	// 冗余的患者姓名（仅用于展示，authoritative 数据在 patients 表）
	PatientName string `db:"patient_name"` // VARCHAR(100), NOT NULL

	// 时间窗口（写入时校验 end > start，分类器不再复核）
	StartTime time.Time `db:"start_time"` // TIMESTAMPTZ, NOT NULL
	EndTime   time.Time `db:"end_time"`   // TIMESTAMPTZ, NOT NULL

	// 状态
	Status string `db:"status"` // VARCHAR(20), NOT NULL, DEFAULT 'scheduled'

	// 任务清单
	Tasks []ShiftTask `db:"tasks"` // JSONB, NOT NULL, DEFAULT '[]'::jsonb

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL, DEFAULT CURRENT_TIMESTAMP
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL, DEFAULT CURRENT_TIMESTAMP
}

// Duration 值班时长
func (s *Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
