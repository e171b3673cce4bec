package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// MemoryInvitesRepository: 用于 DB 未就绪时的联测
type MemoryInvitesRepository struct {
	mu      sync.RWMutex
	invites map[string]domain.Invite // inviteID -> Invite
}

func NewMemoryInvitesRepository() *MemoryInvitesRepository {
	return &MemoryInvitesRepository{
		invites: map[string]domain.Invite{},
	}
}

var _ InvitesRepository = (*MemoryInvitesRepository)(nil)

func (r *MemoryInvitesRepository) RecordRedemption(_ context.Context, invite *domain.Invite) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv := *invite
	if inv.InviteID == "" {
		inv.InviteID = uuid.NewString()
	}
	if inv.RedeemedAt.IsZero() {
		inv.RedeemedAt = time.Now()
	}
	r.invites[inv.InviteID] = inv
	return inv.InviteID, nil
}

func (r *MemoryInvitesRepository) ListRedemptionsByOwner(_ context.Context, ownerID string) ([]domain.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Invite{}
	for _, inv := range r.invites {
		if inv.OwnerID == ownerID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RedeemedAt.After(out[j].RedeemedAt)
	})
	return out, nil
}
