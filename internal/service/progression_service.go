package service

import (
	"context"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProgressionService applies the gamification side effects of a completed
// evaluation: XP award, streak bump, leaderboard mirror, achievement rules.
// These are best-effort relative to the evaluation itself: the score is
// already persisted when this runs, so failures are logged, not returned.
type ProgressionService struct {
	UserRepo     *repository.UserRepository
	UserService  *UserService
	Leaderboard  *LeaderboardService
	Achievements *AchievementService
}

func NewProgressionService(
	userRepo *repository.UserRepository,
	userService *UserService,
	leaderboard *LeaderboardService,
	achievements *AchievementService,
) *ProgressionService {
	return &ProgressionService{
		UserRepo:     userRepo,
		UserService:  userService,
		Leaderboard:  leaderboard,
		Achievements: achievements,
	}
}

func (s *ProgressionService) RecordCompletion(userID uint, score, points int) {
	ctx := context.Background()

	if points > 0 {
		if err := s.UserRepo.UpdateXP(userID, points); err != nil {
			logger.Log.Error("xp award failed", zap.Uint("user", userID), zap.Error(err))
		} else {
			s.Leaderboard.RecordXP(ctx, userID, points)
		}
	}

	if err := s.UserService.RecordActivity(userID); err != nil {
		logger.Log.Error("streak update failed", zap.Uint("user", userID), zap.Error(err))
	}

	if _, err := s.Achievements.CheckAfterEvaluation(userID, score); err != nil {
		logger.Log.Error("achievement check failed", zap.Uint("user", userID), zap.Error(err))
	}
}
