package domain

import (
	"database/sql"
	"time"
)

// 用户角色
const (
	RoleOwner     = "owner"     // 主照护者（档案所有者）
	RoleCaregiver = "caregiver" // 协助照护者（通过邀请码加入）
)

// User 用户领域模型（对应 users 表）
type User struct {
	// 主键
	UserID string `db:"user_id"`

	// 账号信息
	UserAccount     string `db:"user_account"`      // NOT NULL
	UserAccountHash []byte `db:"user_account_hash"` // NOT NULL, sha256(lower(account))
	PasswordHash    []byte `db:"password_hash"`     // NOT NULL, sha256(lower(account)+":"+password)

	// 基本信息
	Nickname sql.NullString `db:"nickname"`  // nullable
	Email    sql.NullString `db:"email"`     // nullable
	Phone    sql.NullString `db:"phone"`     // nullable
	PhotoURL sql.NullString `db:"photo_url"` // nullable
	Role     string         `db:"role"`      // NOT NULL, 'owner'/'caregiver'
	Status   string         `db:"status"`    // nullable, default 'active'

	// 协助照护者归属的主照护者（owner 自身为 NULL）
	OwnerID sql.NullString `db:"owner_id"` // nullable, FK to users

	// 登录
	LastLoginAt sql.NullTime `db:"last_login_at"` // nullable

	CreatedAt time.Time `db:"created_at"`
}

// DisplayName 展示名：优先昵称，其次账号
func (u *User) DisplayName() string {
	if u.Nickname.Valid && u.Nickname.String != "" {
		return u.Nickname.String
	}
	return u.UserAccount
}
