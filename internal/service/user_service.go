package service

import (
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/repository"
	"time"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetByID(userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}

type ProfileUpdate struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Avatar   string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, update *ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Language != "" {
		user.Language = update.Language
	}
	if update.Avatar != "" {
		user.Avatar = update.Avatar
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// RecordActivity advances the daily streak: same day is a no-op, a
// consecutive day increments, a gap resets to 1. Longest streak is kept.
func (s *UserService) RecordActivity(userID uint) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	current, longest := NextStreak(user.CurrentStreak, user.LongestStreak, user.LastActiveAt, now)
	return s.UserRepo.UpdateStreak(userID, current, longest, now)
}

// NextStreak is the pure streak transition, split out for tests.
func NextStreak(current, longest int, lastActive *time.Time, now time.Time) (int, int) {
	switch {
	case lastActive == nil:
		current = 1
	case sameDay(*lastActive, now):
		if current == 0 {
			current = 1
		}
	case sameDay(lastActive.AddDate(0, 0, 1), now):
		current++
	default:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
