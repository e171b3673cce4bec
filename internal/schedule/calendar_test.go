package schedule

import (
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnDay_FiltersByCalendarDate(t *testing.T) {
	d1 := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	shifts := []domain.Shift{
		shiftAt("day1", d1, d1.Add(time.Hour), domain.ShiftStatusScheduled),
		shiftAt("day2", d2, d2.Add(time.Hour), domain.ShiftStatusScheduled),
	}

	got := OnDay(shifts, d1)
	require.Len(t, got, 1)
	assert.Equal(t, "day1", got[0].ShiftID)
}

func TestOnDay_SortsAscendingByStart(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	evening := shiftAt("evening", day.Add(18*time.Hour), day.Add(20*time.Hour), domain.ShiftStatusScheduled)
	morning := shiftAt("morning", day.Add(8*time.Hour), day.Add(10*time.Hour), domain.ShiftStatusScheduled)
	noon := shiftAt("noon", day.Add(12*time.Hour), day.Add(13*time.Hour), domain.ShiftStatusScheduled)

	// 存储层常按降序返回，这里必须重排
	got := OnDay([]domain.Shift{evening, noon, morning}, day)
	require.Len(t, got, 3)
	assert.Equal(t, "morning", got[0].ShiftID)
	assert.Equal(t, "noon", got[1].ShiftID)
	assert.Equal(t, "evening", got[2].ShiftID)
}

func TestOnDay_SpillingShiftStaysOnStartDay(t *testing.T) {
	// end 跨到第二天的值班仍归属 start 当天
	start := time.Date(2025, 6, 10, 22, 0, 0, 0, time.UTC)
	s := shiftAt("night", start, start.Add(4*time.Hour), domain.ShiftStatusScheduled)

	got := OnDay([]domain.Shift{s}, start)
	require.Len(t, got, 1)

	nextDay := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, OnDay([]domain.Shift{s}, nextDay))
}

func TestMarkedDates(t *testing.T) {
	d1 := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	shifts := []domain.Shift{
		shiftAt("s1", d1, d1.Add(time.Hour), domain.ShiftStatusScheduled),
		shiftAt("s2", d1.Add(2*time.Hour), d1.Add(3*time.Hour), domain.ShiftStatusScheduled),
		shiftAt("s3", d2, d2.Add(time.Hour), domain.ShiftStatusScheduled),
	}

	selected := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	marks := MarkedDates(shifts, selected)

	require.Len(t, marks, 3)
	assert.True(t, marks["2025-06-10"].HasShifts)
	assert.True(t, marks["2025-06-12"].HasShifts)

	// 选中日即使没有值班也要出现
	assert.False(t, marks["2025-06-20"].HasShifts)
	assert.True(t, marks["2025-06-20"].Selected)
}

func TestMarkedDates_SelectedDayWithShifts(t *testing.T) {
	d1 := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	shifts := []domain.Shift{shiftAt("s1", d1, d1.Add(time.Hour), domain.ShiftStatusScheduled)}

	marks := MarkedDates(shifts, d1)
	require.Len(t, marks, 1)
	assert.True(t, marks["2025-06-10"].HasShifts)
	assert.True(t, marks["2025-06-10"].Selected)
}
