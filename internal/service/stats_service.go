package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/schedule"
	"github.com/pweat/Opieka-Plus-sub000/internal/store"

	"go.uber.org/zap"
)

// 展示名解析失败时的兜底标签
const unknownLabel = "Unknown"

// 调用者自己的分组显示为固定标签（主照护者亲自值班的情况）
const selfLabel = "You"

const nameCacheTTL = 10 * time.Minute

// StatsService 月度统计服务接口
type StatsService interface {
	// MonthlyStats 月度小时统计（按角色分组：owner 按照护者，caregiver 按患者）
	MonthlyStats(ctx context.Context, req MonthlyStatsRequest) (*MonthlyStatsResponse, error)

	// ExportMonthlyStats 导出月度统计 Excel
	ExportMonthlyStats(ctx context.Context, req MonthlyStatsRequest) ([]byte, error)
}

// statsService 实现
type statsService struct {
	shiftsRepo   repository.ShiftsRepository
	usersRepo    repository.UsersRepository
	patientsRepo repository.PatientsRepository
	nameCache    store.KV
	logger       *zap.Logger
}

// NewStatsService 创建月度统计服务
func NewStatsService(
	shiftsRepo repository.ShiftsRepository,
	usersRepo repository.UsersRepository,
	patientsRepo repository.PatientsRepository,
	nameCache store.KV,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		shiftsRepo:   shiftsRepo,
		usersRepo:    usersRepo,
		patientsRepo: patientsRepo,
		nameCache:    nameCache,
		logger:       logger,
	}
}

// MonthlyStatsRequest 月度统计请求
type MonthlyStatsRequest struct {
	UserID string
	Role   string // 'owner' | 'caregiver'
	Year   int
	Month  time.Month
}

// MonthlyStatsResponse 月度统计响应（小时数在这里做一位小数舍入，聚合过程保持全精度）
type MonthlyStatsResponse struct {
	Year            int                  `json:"year"`
	Month           int                  `json:"month"`
	TotalMonthHours float64              `json:"totalMonthHours"`
	Groups          []schedule.GroupStats `json:"groups"`
}

// MonthlyStats 月度小时统计
func (s *statsService) MonthlyStats(ctx context.Context, req MonthlyStatsRequest) (*MonthlyStatsResponse, error) {
	stats, err := s.aggregate(ctx, req)
	if err != nil {
		return nil, err
	}

	groupBy := schedule.GroupByCaregiver
	if req.Role == domain.RoleCaregiver {
		groupBy = schedule.GroupByPatient
	}
	s.resolveGroupNames(ctx, stats.Groups, groupBy, req.UserID)

	resp := &MonthlyStatsResponse{
		Year:            stats.Year,
		Month:           int(stats.Month),
		TotalMonthHours: schedule.RoundHours(stats.TotalMonthHours),
		Groups:          make([]schedule.GroupStats, len(stats.Groups)),
	}
	for i, g := range stats.Groups {
		g.TotalHours = schedule.RoundHours(g.TotalHours)
		resp.Groups[i] = g
	}
	return resp, nil
}

// aggregate 取数 + 纯聚合
func (s *statsService) aggregate(ctx context.Context, req MonthlyStatsRequest) (*schedule.MonthStats, error) {
	if req.Year == 0 || req.Month < time.January || req.Month > time.December {
		return nil, fmt.Errorf("invalid year/month")
	}

	filters := &repository.ShiftFilters{Status: domain.ShiftStatusCompleted}
	groupBy := schedule.GroupByCaregiver
	if req.Role == domain.RoleCaregiver {
		filters.CaregiverID = req.UserID
		groupBy = schedule.GroupByPatient
	} else {
		filters.OwnerID = req.UserID
	}

	shifts, err := s.shiftsRepo.ListShifts(ctx, filters)
	if err != nil {
		return nil, err
	}

	stats := schedule.AggregateMonth(shifts, req.Year, req.Month, groupBy)
	return &stats, nil
}

// resolveGroupNames 并发解析分组展示名
// 单个查询失败只降级为 "Unknown"，绝不让整批失败（每个分组互相隔离）
func (s *statsService) resolveGroupNames(ctx context.Context, groups []schedule.GroupStats, groupBy schedule.GroupBy, callerID string) {
	var wg sync.WaitGroup
	for i := range groups {
		if groups[i].Key == callerID {
			groups[i].Name = selfLabel
			continue
		}
		wg.Add(1)
		go func(g *schedule.GroupStats) {
			defer wg.Done()
			g.Name = s.lookupName(ctx, groupBy, g.Key)
		}(&groups[i])
	}
	wg.Wait()
}

// lookupName 带旁路缓存的展示名查询
func (s *statsService) lookupName(ctx context.Context, groupBy schedule.GroupBy, id string) string {
	cacheKey := fmt.Sprintf("name:%s:%s", groupBy, id)
	if s.nameCache != nil {
		if name, err := s.nameCache.Get(ctx, cacheKey); err == nil {
			return name
		}
	}

	var name string
	if groupBy == schedule.GroupByPatient {
		patient, err := s.patientsRepo.GetPatient(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to resolve patient name",
				zap.String("patient_id", id),
				zap.Error(err),
			)
			return unknownLabel
		}
		name = patient.Name
	} else {
		user, err := s.usersRepo.GetUser(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to resolve caregiver name",
				zap.String("user_id", id),
				zap.Error(err),
			)
			return unknownLabel
		}
		name = user.DisplayName()
	}

	if s.nameCache != nil {
		if err := s.nameCache.Set(ctx, cacheKey, name, nameCacheTTL); err != nil {
			s.logger.Warn("Failed to cache display name", zap.Error(err))
		}
	}
	return name
}
