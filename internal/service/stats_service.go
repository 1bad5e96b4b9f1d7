package service

import (
	"context"
	"fmt"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

// DashboardStats is the overview shown on the admin panel home page.
type DashboardStats struct {
	Members         map[string]int64 `json:"members"`
	TotalMembers    int64            `json:"totalMembers"`
	CurrentlyInside int64            `json:"currentlyInside"`
	CheckInsToday   int64            `json:"checkInsToday"`
	UpcomingClasses int64            `json:"upcomingClasses"`
	Equipment       map[string]int64 `json:"equipment"`
	Capacity        int              `json:"capacity"`
}

type StatsService struct {
	gyms      repository.GymRepository
	members   repository.MemberRepository
	checkIns  repository.CheckInRepository
	classes   repository.ClassRepository
	equipment repository.EquipmentRepository
	clock     clock.Clock
	window    time.Duration
}

func NewStatsService(
	gyms repository.GymRepository,
	members repository.MemberRepository,
	checkIns repository.CheckInRepository,
	classes repository.ClassRepository,
	equipment repository.EquipmentRepository,
	clk clock.Clock,
	window time.Duration,
) *StatsService {
	if window <= 0 {
		window = DefaultCheckInWindow
	}
	return &StatsService{
		gyms:      gyms,
		members:   members,
		checkIns:  checkIns,
		classes:   classes,
		equipment: equipment,
		clock:     clk,
		window:    window,
	}
}

func (s *StatsService) Dashboard(ctx context.Context, gymID uint) (*DashboardStats, error) {
	gym, err := s.gyms.FindByID(ctx, gymID)
	if err != nil {
		return nil, mapRepoErr(err, "gym")
	}
	now := s.clock.Now()
	stats := &DashboardStats{Capacity: gym.Capacity}

	if stats.Members, err = s.members.CountByStatus(ctx, gymID); err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if stats.Members == nil {
		stats.Members = map[string]int64{}
	}
	for _, status := range []string{
		models.MemberStatusActive, models.MemberStatusSuspended,
		models.MemberStatusExpired, models.MemberStatusCancelled,
	} {
		stats.TotalMembers += stats.Members[status]
		if _, ok := stats.Members[status]; !ok {
			stats.Members[status] = 0
		}
	}
	if stats.CurrentlyInside, err = s.checkIns.CountInside(ctx, gymID, now.Add(-s.window)); err != nil {
		return nil, fmt.Errorf("count inside: %w", err)
	}
	if stats.CheckInsToday, err = s.checkIns.CountGrantedSince(ctx, gymID, clock.StartOfDay(clock.InGym(s.clock, gym.Timezone))); err != nil {
		return nil, fmt.Errorf("count check-ins: %w", err)
	}
	if stats.UpcomingClasses, err = s.classes.CountUpcoming(ctx, gymID, now); err != nil {
		return nil, fmt.Errorf("count classes: %w", err)
	}
	if stats.Equipment, err = s.equipment.CountByStatus(ctx, gymID); err != nil {
		return nil, fmt.Errorf("count equipment: %w", err)
	}
	return stats, nil
}

type ActivityService struct {
	repo repository.ActivityLogRepository
}

func NewActivityService(repo repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// List returns a gym's audit trail, newest first.
func (s *ActivityService) List(ctx context.Context, gymID uint, f repository.ActivityLogFilter) (PageResult[models.ActivityLog], error) {
	items, total, err := s.repo.List(ctx, gymID, f)
	if err != nil {
		return PageResult[models.ActivityLog]{}, err
	}
	return newPageResult(items, total, f.Page), nil
}
