package schedule

import (
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func shiftAt(id string, start, end time.Time, status string) domain.Shift {
	return domain.Shift{
		ShiftID:     id,
		CaregiverID: "cg-1",
		PatientID:   "pt-1",
		StartTime:   start,
		EndTime:     end,
		Status:      status,
	}
}

func TestClassify_EmptySet(t *testing.T) {
	got := Classify(nil, testNow)
	assert.Equal(t, HeroNone, got.State)
	assert.Nil(t, got.Shift)

	got = Classify([]domain.Shift{}, testNow)
	assert.Equal(t, HeroNone, got.State)
}

func TestClassify_ActiveWithinWindow(t *testing.T) {
	s := shiftAt("s1", testNow.Add(-time.Hour), testNow.Add(time.Hour), domain.ShiftStatusScheduled)

	got := Classify([]domain.Shift{s}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, "s1", got.Shift.ShiftID)
	assert.Equal(t, LabelNow, got.Label)
}

func TestClassify_ActiveInProgressStatus(t *testing.T) {
	// status 为 in_progress 时即使时间窗口在未来也算活跃
	s := shiftAt("s1", testNow.Add(time.Hour), testNow.Add(2*time.Hour), domain.ShiftStatusInProgress)

	got := Classify([]domain.Shift{s}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, LabelInProgress, got.Label)
}

func TestClassify_ActiveOverdue(t *testing.T) {
	s := shiftAt("s1", testNow.Add(-3*time.Hour), testNow.Add(-time.Hour), domain.ShiftStatusScheduled)

	got := Classify([]domain.Shift{s}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, LabelOverdue, got.Label)
}

func TestClassify_InclusiveBoundaries(t *testing.T) {
	// now == end 仍算活跃（闭区间）
	s := shiftAt("s1", testNow.Add(-time.Hour), testNow, domain.ShiftStatusScheduled)
	got := Classify([]domain.Shift{s}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, LabelNow, got.Label)

	// now == start 同理
	s = shiftAt("s2", testNow, testNow.Add(time.Hour), domain.ShiftStatusScheduled)
	got = Classify([]domain.Shift{s}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, LabelNow, got.Label)
}

func TestClassify_ActiveTieBreakEarliestStart(t *testing.T) {
	// 多个同时活跃时取 start 最早的，与输入顺序无关
	late := shiftAt("late", testNow.Add(-time.Hour), testNow.Add(time.Hour), domain.ShiftStatusScheduled)
	early := shiftAt("early", testNow.Add(-2*time.Hour), testNow.Add(time.Hour), domain.ShiftStatusScheduled)

	got := Classify([]domain.Shift{late, early}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, "early", got.Shift.ShiftID)

	got = Classify([]domain.Shift{early, late}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, "early", got.Shift.ShiftID)
}

func TestClassify_NextSoonestStart(t *testing.T) {
	far := shiftAt("far", testNow.Add(48*time.Hour), testNow.Add(49*time.Hour), domain.ShiftStatusScheduled)
	soon := shiftAt("soon", testNow.Add(2*time.Hour), testNow.Add(3*time.Hour), domain.ShiftStatusScheduled)

	// 输入乱序也应选中时间上最近的
	got := Classify([]domain.Shift{far, soon}, testNow)
	require.Equal(t, HeroNext, got.State)
	assert.Equal(t, "soon", got.Shift.ShiftID)
	assert.Empty(t, got.Label)
}

func TestClassify_ActivePrecedesNext(t *testing.T) {
	active := shiftAt("active", testNow.Add(-time.Hour), testNow.Add(time.Hour), domain.ShiftStatusScheduled)
	future := shiftAt("future", testNow.Add(2*time.Hour), testNow.Add(3*time.Hour), domain.ShiftStatusScheduled)

	got := Classify([]domain.Shift{future, active}, testNow)
	require.Equal(t, HeroActive, got.State)
	assert.Equal(t, "active", got.Shift.ShiftID)
}

func TestClassify_Idempotent(t *testing.T) {
	shifts := []domain.Shift{
		shiftAt("s1", testNow.Add(-time.Hour), testNow.Add(time.Hour), domain.ShiftStatusScheduled),
		shiftAt("s2", testNow.Add(2*time.Hour), testNow.Add(3*time.Hour), domain.ShiftStatusScheduled),
	}

	first := Classify(shifts, testNow)
	second := Classify(shifts, testNow)
	assert.Equal(t, first, second)
}
