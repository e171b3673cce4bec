package schedule

import (
	"sort"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// DateKey 日历日键，格式 "2006-01-02"（取时间各自 Location 下的本地日期）
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// OnDay 返回 start 落在指定日历日的值班子集，按 start 升序
// 底层存储的返回顺序不可靠（部分查询按 start 降序），这里必须显式排序
func OnDay(shifts []domain.Shift, day time.Time) []domain.Shift {
	key := DateKey(day)
	out := make([]domain.Shift, 0)
	for _, s := range shifts {
		if DateKey(s.StartTime) == key {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// DayMark 日历打点：某天是否有值班、是否为当前选中日
type DayMark struct {
	HasShifts bool `json:"hasShifts"`
	Selected  bool `json:"selected"`
}

// MarkedDates 生成稀疏的日历打点集合
// 所有出现过值班的日期标记 HasShifts；选中日无论有无值班都会出现在结果里
func MarkedDates(shifts []domain.Shift, selected time.Time) map[string]DayMark {
	marks := make(map[string]DayMark)
	for _, s := range shifts {
		key := DateKey(s.StartTime)
		m := marks[key]
		m.HasShifts = true
		marks[key] = m
	}
	selKey := DateKey(selected)
	m := marks[selKey]
	m.Selected = true
	marks[selKey] = m
	return marks
}
