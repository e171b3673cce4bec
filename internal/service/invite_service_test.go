package service

import (
	"context"
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type inviteFixture struct {
	svc         InviteService
	users       *repository.MemoryUsersRepository
	invites     *repository.MemoryInvitesRepository
	notifier    *recordingNotifier
	ownerID     string
	caregiverID string
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	users := repository.NewMemoryUsersRepository()
	invites := repository.NewMemoryInvitesRepository()
	notifier := &recordingNotifier{}

	ownerID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "owner@example.com",
		UserAccountHash: HashAccount("owner@example.com"),
		PasswordHash:    HashAccountPassword("owner@example.com", "secret"),
		Role:            domain.RoleOwner,
	})
	require.NoError(t, err)

	caregiverID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "helper@example.com",
		UserAccountHash: HashAccount("helper@example.com"),
		PasswordHash:    HashAccountPassword("helper@example.com", "secret"),
		Role:            domain.RoleCaregiver,
	})
	require.NoError(t, err)

	svc := NewInviteService(store.NewInviteStore(client), users, invites, notifier, time.Hour, zap.NewNop())
	return &inviteFixture{
		svc:         svc,
		users:       users,
		invites:     invites,
		notifier:    notifier,
		ownerID:     ownerID,
		caregiverID: caregiverID,
	}
}

func TestInviteService_GenerateAndRedeem(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	gen, err := f.svc.GenerateInvite(ctx, f.ownerID)
	require.NoError(t, err)
	assert.Len(t, gen.Code, inviteCodeLength)
	assert.True(t, gen.ExpiresAt.After(time.Now()))

	resp, err := f.svc.RedeemInvite(ctx, RedeemInviteRequest{
		CaregiverID: f.caregiverID,
		Code:        gen.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, f.ownerID, resp.OwnerID)

	// 兑换后照护者被绑定到主照护者
	caregiver, err := f.users.GetUser(ctx, f.caregiverID)
	require.NoError(t, err)
	require.True(t, caregiver.OwnerID.Valid)
	assert.Equal(t, f.ownerID, caregiver.OwnerID.String)

	// 审计记录落库
	history, err := f.svc.ListRedemptions(ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, gen.Code, history[0].Code)

	// 主照护者收到通知
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, f.ownerID, f.notifier.calls[0].UserID)
}

func TestInviteService_CodeIsOneTime(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	gen, err := f.svc.GenerateInvite(ctx, f.ownerID)
	require.NoError(t, err)

	_, err = f.svc.RedeemInvite(ctx, RedeemInviteRequest{CaregiverID: f.caregiverID, Code: gen.Code})
	require.NoError(t, err)

	// 第二次兑换同一个码必须失败
	_, err = f.svc.RedeemInvite(ctx, RedeemInviteRequest{CaregiverID: f.caregiverID, Code: gen.Code})
	assert.ErrorContains(t, err, "invalid or expired")
}

func TestInviteService_RedeemUnknownCode(t *testing.T) {
	f := newInviteFixture(t)

	_, err := f.svc.RedeemInvite(context.Background(), RedeemInviteRequest{
		CaregiverID: f.caregiverID,
		Code:        "ZZZZZZ",
	})
	assert.ErrorContains(t, err, "invalid or expired")
}

func TestInviteService_GenerateOwnerOnly(t *testing.T) {
	f := newInviteFixture(t)

	_, err := f.svc.GenerateInvite(context.Background(), f.caregiverID)
	assert.ErrorContains(t, err, "owner")
}

func TestRandomInviteCode_Alphabet(t *testing.T) {
	code, err := randomInviteCode()
	require.NoError(t, err)
	require.Len(t, code, inviteCodeLength)
	// 不含易混淆字符 0/O/1/I/L
	for _, c := range code {
		assert.Contains(t, inviteAlphabet, string(c))
	}
}
