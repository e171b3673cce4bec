package schedule

import (
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// HeroState 首页英雄卡片的三种互斥状态
type HeroState string

const (
	HeroActive HeroState = "active" // 有正在进行/已逾期的值班
	HeroNext   HeroState = "next"   // 无进行中值班，但有将来的值班
	HeroNone   HeroState = "none"   // 两者皆无
)

// ActiveLabel 活跃值班的展示标签（仅 State == HeroActive 时有效）
type ActiveLabel string

const (
	LabelInProgress ActiveLabel = "IN_PROGRESS" // status 已被外部触发置为 in_progress
	LabelNow        ActiveLabel = "NOW"         // now 落在 [start, end] 窗口内（含边界）
	LabelOverdue    ActiveLabel = "OVERDUE"     // now 已超过 end 而值班尚未完成
)

// HeroStatus 分类结果：三种状态有且仅有一种成立
type HeroStatus struct {
	State HeroState
	Shift *domain.Shift // State == HeroNone 时为 nil
	Label ActiveLabel   // State == HeroActive 时有效，否则为空
}

// Classify 英雄卡片分类器：纯函数，不读写任何外部状态
// 输入不要求有序；活跃值班按最早 start 决胜，下一次值班取 start > now 中最近的一个
// 边界：now == end 仍算活跃（闭区间）
// 调用方负责只传入未完成的值班集合（completed 的值班在查询层就被过滤掉）
func Classify(shifts []domain.Shift, now time.Time) HeroStatus {
	var active *domain.Shift
	for i := range shifts {
		s := &shifts[i]
		if !isActive(s, now) {
			continue
		}
		if active == nil || s.StartTime.Before(active.StartTime) {
			active = s
		}
	}
	if active != nil {
		return HeroStatus{State: HeroActive, Shift: active, Label: activeLabel(active, now)}
	}

	var next *domain.Shift
	for i := range shifts {
		s := &shifts[i]
		if !s.StartTime.After(now) {
			continue
		}
		if next == nil || s.StartTime.Before(next.StartTime) {
			next = s
		}
	}
	if next != nil {
		return HeroStatus{State: HeroNext, Shift: next}
	}

	return HeroStatus{State: HeroNone}
}

// isActive 三个子条件任一成立即为活跃：
// status == in_progress，或 start <= now <= end（含边界），或 now > end（逾期未完成）
func isActive(s *domain.Shift, now time.Time) bool {
	if s.Status == domain.ShiftStatusInProgress {
		return true
	}
	if !now.Before(s.StartTime) && !now.After(s.EndTime) {
		return true
	}
	return now.After(s.EndTime)
}

// activeLabel 标签优先级：in_progress 状态优先于时间窗口判断
func activeLabel(s *domain.Shift, now time.Time) ActiveLabel {
	if s.Status == domain.ShiftStatusInProgress {
		return LabelInProgress
	}
	if now.After(s.EndTime) {
		return LabelOverdue
	}
	return LabelNow
}
