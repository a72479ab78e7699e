package service

import (
	"context"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/pkg/logger"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const leaderboardKey = "leaderboard:xp"

// LeaderboardService keeps a redis sorted set in step with users' XP so the
// ranking query is O(log n) instead of a table scan. The users table stays
// the source of truth; on any redis failure the query falls back to it.
type LeaderboardService struct {
	UserRepo *repository.UserRepository
	Redis    *redis.Client
}

func NewLeaderboardService(userRepo *repository.UserRepository, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{
		UserRepo: userRepo,
		Redis:    rdb,
	}
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	XP     int    `json:"xp"`
	Avatar string `json:"avatar,omitempty"`
}

// RecordXP mirrors an XP delta into the sorted set. Mirror failures are
// logged, not surfaced: the DB write already happened.
func (s *LeaderboardService) RecordXP(ctx context.Context, userID uint, delta int) {
	if s.Redis == nil {
		return
	}
	member := strconv.FormatUint(uint64(userID), 10)
	if err := s.Redis.ZIncrBy(ctx, leaderboardKey, float64(delta), member).Err(); err != nil {
		logger.Log.Warn("leaderboard mirror update failed", zap.Error(err))
	}
}

func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s.Redis != nil {
		entries, err := s.topFromRedis(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			logger.Log.Warn("leaderboard redis query failed, falling back to db", zap.Error(err))
		}
	}
	return s.topFromDB(limit)
}

func (s *LeaderboardService) topFromRedis(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	zs, err := s.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(zs))
	scores := make(map[uint]int, len(zs))
	for _, z := range zs {
		id64, err := strconv.ParseUint(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id64))
		scores[uint(id64)] = int(z.Score)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := s.UserRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]struct{ name, avatar string }, len(users))
	for _, u := range users {
		names[u.ID] = struct{ name, avatar string }{u.Name, u.Avatar}
	}

	entries := make([]LeaderboardEntry, 0, len(ids))
	for i, id := range ids {
		meta := names[id]
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: id,
			Name:   meta.name,
			XP:     scores[id],
			Avatar: meta.avatar,
		})
	}
	return entries, nil
}

func (s *LeaderboardService) topFromDB(limit int) ([]LeaderboardEntry, error) {
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			XP:     u.XP,
			Avatar: u.Avatar,
		}
	}
	return entries, nil
}

// Rank returns a user's 1-based leaderboard position, or 0 when unranked.
func (s *LeaderboardService) Rank(ctx context.Context, userID uint) int {
	if s.Redis == nil {
		return 0
	}
	member := strconv.FormatUint(uint64(userID), 10)
	rank, err := s.Redis.ZRevRank(ctx, leaderboardKey, member).Result()
	if err != nil {
		return 0
	}
	return int(rank) + 1
}
