package service

import (
	"context"

	"github.com/mightystreet/pixel-painter/internal/repository"
	"go.uber.org/zap"
)

// OnlineCounter 在线人数来源
type OnlineCounter interface {
	OnlineCount() int
}

// statsService 画布统计服务实现
type statsService struct {
	placementRepo repository.PlacementRepository
	userRepo      repository.UserRepository
	online        OnlineCounter
	log           *zap.Logger
}

// NewStatsService 创建画布统计服务
func NewStatsService(
	placementRepo repository.PlacementRepository,
	userRepo repository.UserRepository,
	online OnlineCounter,
	log *zap.Logger,
) StatsService {
	return &statsService{
		placementRepo: placementRepo,
		userRepo:      userRepo,
		online:        online,
		log:           log,
	}
}

// Leaderboard 落子排行榜
func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	users, err := s.userRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &LeaderboardEntry{
			Rank:           i + 1,
			Username:       user.Username,
			Nickname:       user.Nickname,
			PlacementCount: user.PlacementCount,
			IsOnline:       user.IsOnline,
		})
	}
	return entries, nil
}

// RecentActivity 最近落子活动流
func (s *statsService) RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	placements, err := s.placementRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*ActivityEntry, 0, len(placements))
	for _, p := range placements {
		entries = append(entries, &ActivityEntry{
			Key:      p.Key,
			Color:    p.Color,
			Username: p.Username,
			PlacedAt: p.PlacedAt,
		})
	}
	return entries, nil
}

// Overview 画布总览
func (s *statsService) Overview(ctx context.Context) (*Overview, error) {
	total, err := s.placementRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	online := 0
	if s.online != nil {
		online = s.online.OnlineCount()
	}

	return &Overview{
		TotalPlacements: total,
		OnlineUsers:     online,
	}, nil
}
