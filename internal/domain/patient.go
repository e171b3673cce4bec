package domain

import (
	"database/sql"
	"time"
)

// Patient 患者（被照护人）领域模型（对应 patients 表）
// 由主照护者创建和维护
type Patient struct {
	// 主键
	PatientID string `db:"patient_id"` // UUID, PRIMARY KEY

	// 归属
	OwnerID string `db:"owner_id"` // UUID, NOT NULL, FK to users（主照护者）

	// 基本信息
	Name      string         `db:"name"`       // VARCHAR(100), NOT NULL
	BirthDate sql.NullTime   `db:"birth_date"` // DATE, nullable
	Notes     sql.NullString `db:"notes"`      // TEXT, nullable（病情/护理说明）
	PhotoURL  sql.NullString `db:"photo_url"`  // TEXT, nullable

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
