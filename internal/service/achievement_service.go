package service

import (
	"flowlearn_backend/internal/model"
	"flowlearn_backend/pkg/logger"

	"go.uber.org/zap"
)

// Narrow store interfaces so the unlock rules run against fakes in tests.
type achievementStore interface {
	FindAll() ([]model.Achievement, error)
	FindUnlocked(userID uint) ([]model.UserAchievement, error)
	Unlock(userID, achievementID uint) (bool, error)
}

type achievementUserStore interface {
	FindByID(id uint) (*model.User, error)
	UpdateXP(userID uint, xp int) error
}

type submissionTallies interface {
	CountAll(userID uint) (int64, error)
	CountCompleted(userID uint) (int64, error)
}

type AchievementService struct {
	AchievementRepo achievementStore
	UserRepo        achievementUserStore
	SubmissionRepo  submissionTallies
}

func NewAchievementService(
	achievementRepo achievementStore,
	userRepo achievementUserStore,
	submissionRepo submissionTallies,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		UserRepo:        userRepo,
		SubmissionRepo:  submissionRepo,
	}
}

type UserAchievements struct {
	TotalXP      int                     `json:"totalXp"`
	CurrentLevel int                     `json:"currentLevel"`
	NextLevelXP  int                     `json:"nextLevelXp"`
	Unlocked     []model.UserAchievement `json:"unlocked"`
	Catalog      []model.Achievement     `json:"catalog"`
}

func (s *AchievementService) GetUserAchievements(userID uint) (*UserAchievements, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.AchievementRepo.FindUnlocked(userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.AchievementRepo.FindAll()
	if err != nil {
		return nil, err
	}

	level, nextLevelXP := calculateLevel(user.XP)

	return &UserAchievements{
		TotalXP:      user.XP,
		CurrentLevel: level,
		NextLevelXP:  nextLevelXP,
		Unlocked:     unlocked,
		Catalog:      catalog,
	}, nil
}

// CheckAfterEvaluation runs the unlock rules once a submission completes.
// Returns the codes unlocked by this call; re-checks are idempotent.
func (s *AchievementService) CheckAfterEvaluation(userID uint, score int) ([]string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	totalSubmissions, err := s.SubmissionRepo.CountAll(userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.SubmissionRepo.CountCompleted(userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.AchievementRepo.FindAll()
	if err != nil {
		return nil, err
	}

	var unlocked []string
	for _, a := range catalog {
		if !s.criteriaMet(&a, user, score, totalSubmissions, completed) {
			continue
		}
		fresh, err := s.AchievementRepo.Unlock(userID, a.ID)
		if err != nil {
			return unlocked, err
		}
		if !fresh {
			continue
		}
		unlocked = append(unlocked, a.Code)
		if a.XPReward > 0 {
			if err := s.UserRepo.UpdateXP(userID, a.XPReward); err != nil {
				return unlocked, err
			}
		}
		logger.Log.Info("achievement unlocked",
			zap.Uint("user", userID), zap.String("code", a.Code))
	}

	return unlocked, nil
}

func (s *AchievementService) criteriaMet(a *model.Achievement, user *model.User, score int, totalSubmissions, completed int64) bool {
	switch a.Criteria {
	case model.CriteriaFirstSubmission:
		return totalSubmissions >= 1
	case model.CriteriaScoreAtLeast:
		return score >= a.Threshold
	case model.CriteriaPerfectScore:
		return score >= 100
	case model.CriteriaChallengesCompleted:
		return completed >= int64(a.Threshold)
	case model.CriteriaStreakDays:
		return user.CurrentStreak >= a.Threshold
	case model.CriteriaTotalXP:
		return user.XP >= a.Threshold
	default:
		return false
	}
}

// calculateLevel maps XP to a level with a 500-XP-per-level curve.
func calculateLevel(xp int) (level, nextLevelXP int) {
	level = xp/500 + 1
	nextLevelXP = level * 500
	return level, nextLevelXP
}
