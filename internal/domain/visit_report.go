package domain

import (
	"database/sql"
	"time"
)

// VisitReport 探访报告领域模型（对应 visit_reports 表）
// 照护者完成一次值班后提交；提交即把对应 Shift 置为 completed
type VisitReport struct {
	// 主键
	ReportID string `db:"report_id"` // UUID, PRIMARY KEY

	// 关联
	ShiftID     string `db:"shift_id"`     // UUID, NOT NULL, UNIQUE, FK to shifts
	CaregiverID string `db:"caregiver_id"` // UUID, NOT NULL, FK to users
	PatientID   string `db:"patient_id"`   // UUID, NOT NULL, FK to patients

	// 报告内容
	Mood       int            `db:"mood"`        // SMALLINT, NOT NULL, 1-5（患者情绪）
	Energy     int            `db:"energy"`      // SMALLINT, NOT NULL, 1-5（患者精力）
	Notes      sql.NullString `db:"notes"`       // TEXT, nullable
	TasksDone  int            `db:"tasks_done"`  // SMALLINT, NOT NULL（完成的任务数）
	TasksTotal int            `db:"tasks_total"` // SMALLINT, NOT NULL

	CreatedAt time.Time `db:"created_at"`
}
