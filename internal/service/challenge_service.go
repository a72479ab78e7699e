package service

import (
	"errors"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChallengeService struct {
	ChallengeRepo *repository.ChallengeRepository
	Subscription  *SubscriptionService
}

func NewChallengeService(challengeRepo *repository.ChallengeRepository, subscription *SubscriptionService) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo: challengeRepo,
		Subscription:  subscription,
	}
}

// ChallengeSummary is the listing shape: rubric and hints stay hidden until
// the student opens the challenge.
type ChallengeSummary struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Difficulty       model.Difficulty `json:"difficulty"`
	Points           int              `json:"points"`
	TimeLimitMinutes int              `json:"timeLimitMinutes"`
}

type ChallengeDetail struct {
	ChallengeSummary
	Requirements datatypes.JSON `json:"requirements"`
	Hints        datatypes.JSON `json:"hints,omitempty"`
}

func summarize(c *model.Challenge) ChallengeSummary {
	return ChallengeSummary{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Difficulty:       c.Difficulty,
		Points:           c.Points,
		TimeLimitMinutes: c.TimeLimitMinutes,
	}
}

func (s *ChallengeService) List(difficulty string, page, limit int) ([]ChallengeSummary, int64, error) {
	challenges, total, err := s.ChallengeRepo.FindActive(difficulty, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ChallengeSummary, len(challenges))
	for i := range challenges {
		summaries[i] = summarize(&challenges[i])
	}
	return summaries, total, nil
}

// Get returns the full challenge for a student who passes the subscription
// gate. The rubric itself is still withheld; only the grader sees it.
func (s *ChallengeService) Get(user *model.User, id uint) (*ChallengeDetail, error) {
	challenge, err := s.ChallengeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if !challenge.Active {
		return nil, util.ErrChallengeInactive
	}

	allowed, err := s.Subscription.CanAccessChallenge(user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, util.ErrChallengeLocked
	}

	return &ChallengeDetail{
		ChallengeSummary: summarize(challenge),
		Requirements:     challenge.Requirements,
		Hints:            challenge.Hints,
	}, nil
}

// Admin catalog management.

type ChallengeInput struct {
	Title            string           `json:"title" binding:"required"`
	Description      string           `json:"description"`
	Difficulty       model.Difficulty `json:"difficulty" binding:"required,oneof=easy medium hard expert"`
	Points           int              `json:"points" binding:"required,min=1"`
	Requirements     datatypes.JSON   `json:"requirements"`
	EvaluationRubric datatypes.JSON   `json:"evaluationRubric"`
	Hints            datatypes.JSON   `json:"hints"`
	TimeLimitMinutes int              `json:"timeLimitMinutes"`
	Active           *bool            `json:"active"`
}

func (s *ChallengeService) Create(input *ChallengeInput) (*model.Challenge, error) {
	challenge := &model.Challenge{
		Title:            input.Title,
		Description:      input.Description,
		Difficulty:       input.Difficulty,
		Points:           input.Points,
		Requirements:     input.Requirements,
		EvaluationRubric: input.EvaluationRubric,
		Hints:            input.Hints,
		TimeLimitMinutes: input.TimeLimitMinutes,
		Active:           true,
	}
	if input.Active != nil {
		challenge.Active = *input.Active
	}
	if err := s.ChallengeRepo.Create(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) Update(id uint, input *ChallengeInput) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	challenge.Title = input.Title
	challenge.Description = input.Description
	challenge.Difficulty = input.Difficulty
	challenge.Points = input.Points
	challenge.Requirements = input.Requirements
	challenge.EvaluationRubric = input.EvaluationRubric
	challenge.Hints = input.Hints
	challenge.TimeLimitMinutes = input.TimeLimitMinutes
	if input.Active != nil {
		challenge.Active = *input.Active
	}

	if err := s.ChallengeRepo.Update(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *ChallengeService) Delete(id uint) error {
	return s.ChallengeRepo.Delete(id)
}
