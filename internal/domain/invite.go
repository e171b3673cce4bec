package domain

import "time"

// Invite 邀请码兑换记录（对应 invites 表，仅审计用）
// 未兑换的邀请码以 TTL 形式存放在 Redis，不落库
type Invite struct {
	// 主键
	InviteID string `db:"invite_id"` // UUID, PRIMARY KEY

	// 关联方
	OwnerID     string `db:"owner_id"`     // UUID, NOT NULL, FK to users（发出邀请的主照护者）
	CaregiverID string `db:"caregiver_id"` // UUID, NOT NULL, FK to users（兑换者）

	// 兑换信息
	Code       string    `db:"code"`        // VARCHAR(12), NOT NULL（一次性邀请码）
	RedeemedAt time.Time `db:"redeemed_at"` // TIMESTAMPTZ, NOT NULL
}
