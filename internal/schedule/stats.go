package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
)

// GroupBy 月度统计的分组维度
type GroupBy string

const (
	GroupByCaregiver GroupBy = "caregiver" // 主照护者视角：按执行照护者分组
	GroupByPatient   GroupBy = "patient"   // 协助照护者视角：按患者分组
)

// GroupStats 单个分组的累计值
type GroupStats struct {
	Key        string  `json:"key"`        // caregiver_id 或 patient_id
	Name       string  `json:"name"`       // 展示名（聚合后由上层补齐）
	TotalHours float64 `json:"totalHours"` // 小数小时，内部保留全精度
	VisitCount int     `json:"visitCount"`
}

// MonthStats 月度统计结果
type MonthStats struct {
	Year            int          `json:"year"`
	Month           time.Month   `json:"month"`
	TotalMonthHours float64      `json:"totalMonthHours"`
	Groups          []GroupStats `json:"groups"`
}

// AggregateMonth 月度小时聚合器：纯函数
// 仅统计 status == completed 且 start 落在目标月内的值班；时长为 end-start 的
// 小数小时，不按月边界裁剪（跨月值班整体计入 start 所在月），累加过程不做舍入。
// 分组按 TotalHours 降序排列，同值按 Key 升序，保证结果确定。
func AggregateMonth(shifts []domain.Shift, year int, month time.Month, groupBy GroupBy) MonthStats {
	stats := MonthStats{Year: year, Month: month, Groups: []GroupStats{}}

	byKey := make(map[string]*GroupStats)
	for i := range shifts {
		s := &shifts[i]
		if s.Status != domain.ShiftStatusCompleted {
			continue
		}
		if s.StartTime.Year() != year || s.StartTime.Month() != month {
			continue
		}

		hours := s.EndTime.Sub(s.StartTime).Hours()
		stats.TotalMonthHours += hours

		key := s.CaregiverID
		if groupBy == GroupByPatient {
			key = s.PatientID
		}
		g, ok := byKey[key]
		if !ok {
			g = &GroupStats{Key: key}
			byKey[key] = g
		}
		g.TotalHours += hours
		g.VisitCount++
	}

	for _, g := range byKey {
		stats.Groups = append(stats.Groups, *g)
	}
	sort.Slice(stats.Groups, func(i, j int) bool {
		if stats.Groups[i].TotalHours != stats.Groups[j].TotalHours {
			return stats.Groups[i].TotalHours > stats.Groups[j].TotalHours
		}
		return stats.Groups[i].Key < stats.Groups[j].Key
	})
	return stats
}

// RoundHours 展示用的一位小数舍入（仅在渲染时调用，聚合过程保持全精度）
func RoundHours(h float64) float64 {
	return math.Round(h*10) / 10
}
