package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// PostgresInvitesRepository 邀请码兑换审计Repository实现
type PostgresInvitesRepository struct {
	db *sql.DB
}

// NewPostgresInvitesRepository 创建邀请码审计Repository
func NewPostgresInvitesRepository(db *sql.DB) *PostgresInvitesRepository {
	return &PostgresInvitesRepository{db: db}
}

// 确保实现了接口
var _ InvitesRepository = (*PostgresInvitesRepository)(nil)

// RecordRedemption 记录一次兑换
func (r *PostgresInvitesRepository) RecordRedemption(ctx context.Context, invite *domain.Invite) (string, error) {
	inviteID := invite.InviteID
	if inviteID == "" {
		inviteID = uuid.NewString()
	}

	query := `
		INSERT INTO invites (invite_id, owner_id, caregiver_id, code, redeemed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		inviteID,
		invite.OwnerID,
		invite.CaregiverID,
		invite.Code,
		invite.RedeemedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record invite redemption: %w", err)
	}
	return inviteID, nil
}

// ListRedemptionsByOwner 列出某主照护者名下的兑换记录
func (r *PostgresInvitesRepository) ListRedemptionsByOwner(ctx context.Context, ownerID string) ([]domain.Invite, error) {
	if ownerID == "" {
		return []domain.Invite{}, nil
	}

	query := `
		SELECT invite_id::text, owner_id::text, caregiver_id::text, code, redeemed_at
		FROM invites
		WHERE owner_id = $1
		ORDER BY redeemed_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invite redemptions: %w", err)
	}
	defer rows.Close()

	invites := []domain.Invite{}
	for rows.Next() {
		var inv domain.Invite
		if err := rows.Scan(&inv.InviteID, &inv.OwnerID, &inv.CaregiverID, &inv.Code, &inv.RedeemedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invites: %w", err)
	}
	return invites, nil
}
