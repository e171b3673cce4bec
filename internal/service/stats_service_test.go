package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type statsFixture struct {
	svc        StatsService
	users      *repository.MemoryUsersRepository
	patients   *repository.MemoryPatientsRepository
	shiftsRepo *repository.MemoryShiftsRepository
	ownerID    string
	helperID   string
	patientID  string
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	ctx := context.Background()

	users := repository.NewMemoryUsersRepository()
	patients := repository.NewMemoryPatientsRepository()
	shifts := repository.NewMemoryShiftsRepository()

	ownerID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "owner@example.com",
		UserAccountHash: HashAccount("owner@example.com"),
		PasswordHash:    HashAccountPassword("owner@example.com", "secret"),
		Role:            domain.RoleOwner,
	})
	require.NoError(t, err)

	helperID, err := users.CreateUser(ctx, &domain.User{
		UserAccount:     "helper@example.com",
		UserAccountHash: HashAccount("helper@example.com"),
		PasswordHash:    HashAccountPassword("helper@example.com", "secret"),
		Nickname:        sql.NullString{String: "Marta", Valid: true},
		Role:            domain.RoleCaregiver,
	})
	require.NoError(t, err)

	patientID, err := patients.CreatePatient(ctx, &domain.Patient{
		OwnerID: ownerID,
		Name:    "Grandma Ania",
	})
	require.NoError(t, err)

	svc := NewStatsService(shifts, users, patients, nil, zap.NewNop())
	return &statsFixture{
		svc:        svc,
		users:      users,
		patients:   patients,
		shiftsRepo: shifts,
		ownerID:    ownerID,
		helperID:   helperID,
		patientID:  patientID,
	}
}

func (f *statsFixture) addCompletedShift(t *testing.T, caregiverID string, start time.Time, d time.Duration) {
	t.Helper()
	_, err := f.shiftsRepo.CreateShift(context.Background(), &domain.Shift{
		OwnerID:     f.ownerID,
		CaregiverID: caregiverID,
		PatientID:   f.patientID,
		PatientName: "Grandma Ania",
		StartTime:   start,
		EndTime:     start.Add(d),
		Status:      domain.ShiftStatusCompleted,
	})
	require.NoError(t, err)
}

func TestStatsService_MonthlyStats_OwnerGroupsByCaregiver(t *testing.T) {
	f := newStatsFixture(t)
	june := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	f.addCompletedShift(t, f.helperID, june, 75*time.Minute)                     // 1.25h
	f.addCompletedShift(t, f.helperID, june.AddDate(0, 0, 5), 165*time.Minute)   // 2.75h
	f.addCompletedShift(t, f.ownerID, june.AddDate(0, 0, 10), 2*time.Hour)       // owner 自己值班
	f.addCompletedShift(t, f.helperID, june.AddDate(0, 1, 0), 8*time.Hour)       // 7月，不计入

	resp, err := f.svc.MonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.ownerID,
		Role:   domain.RoleOwner,
		Year:   2025,
		Month:  time.June,
	})
	require.NoError(t, err)

	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, 6, resp.Month)
	// 1.25 + 2.75 + 2.0，全精度求和后只在响应层做一位小数舍入
	assert.InDelta(t, 6.0, resp.TotalMonthHours, 1e-9)
	require.Len(t, resp.Groups, 2)

	// 小时数降序：Marta (4.0) 在前
	assert.Equal(t, f.helperID, resp.Groups[0].Key)
	assert.Equal(t, "Marta", resp.Groups[0].Name)
	assert.InDelta(t, 4.0, resp.Groups[0].TotalHours, 1e-9)
	assert.Equal(t, 3, resp.Groups[0].VisitCount)

	// 调用方自己显示为 "You"
	assert.Equal(t, f.ownerID, resp.Groups[1].Key)
	assert.Equal(t, "You", resp.Groups[1].Name)
}

func TestStatsService_MonthlyStats_CaregiverGroupsByPatient(t *testing.T) {
	f := newStatsFixture(t)
	june := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.addCompletedShift(t, f.helperID, june, 90*time.Minute)

	resp, err := f.svc.MonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.helperID,
		Role:   domain.RoleCaregiver,
		Year:   2025,
		Month:  time.June,
	})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, f.patientID, resp.Groups[0].Key)
	assert.Equal(t, "Grandma Ania", resp.Groups[0].Name)
	assert.InDelta(t, 1.5, resp.Groups[0].TotalHours, 1e-9)
}

func TestStatsService_MonthlyStats_UnknownNameFallback(t *testing.T) {
	f := newStatsFixture(t)
	june := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	// 照护者已被删号，名字解析失败只降级该分组
	f.addCompletedShift(t, "deleted-user", june, time.Hour)
	f.addCompletedShift(t, f.helperID, june, time.Hour)

	resp, err := f.svc.MonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.ownerID,
		Role:   domain.RoleOwner,
		Year:   2025,
		Month:  time.June,
	})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)

	names := map[string]string{}
	for _, g := range resp.Groups {
		names[g.Key] = g.Name
	}
	assert.Equal(t, "Unknown", names["deleted-user"])
	assert.Equal(t, "Marta", names[f.helperID])
}

func TestStatsService_MonthlyStats_EmptyMonth(t *testing.T) {
	f := newStatsFixture(t)

	resp, err := f.svc.MonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.ownerID,
		Role:   domain.RoleOwner,
		Year:   2025,
		Month:  time.February,
	})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalMonthHours)
	assert.Empty(t, resp.Groups)
}

func TestStatsService_MonthlyStats_InvalidMonth(t *testing.T) {
	f := newStatsFixture(t)

	_, err := f.svc.MonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.ownerID,
		Role:   domain.RoleOwner,
		Year:   2025,
		Month:  time.Month(13),
	})
	assert.Error(t, err)
}

func TestStatsService_ExportMonthlyStats(t *testing.T) {
	f := newStatsFixture(t)
	june := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.addCompletedShift(t, f.helperID, june, 2*time.Hour)

	data, err := f.svc.ExportMonthlyStats(context.Background(), MonthlyStatsRequest{
		UserID: f.ownerID,
		Role:   domain.RoleOwner,
		Year:   2025,
		Month:  time.June,
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// xlsx 是 zip 容器，魔数 "PK"
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}
