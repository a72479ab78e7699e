package service

import (
	"encoding/json"
	"errors"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionService struct {
	SubmissionRepo *repository.SubmissionRepository
	ChallengeRepo  *repository.ChallengeRepository
	Subscription   *SubscriptionService
}

func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	challengeRepo *repository.ChallengeRepository,
	subscription *SubscriptionService,
) *SubmissionService {
	return &SubmissionService{
		SubmissionRepo: submissionRepo,
		ChallengeRepo:  challengeRepo,
		Subscription:   subscription,
	}
}

// Create opens a pending submission for an accessible challenge. The weekly
// free-tier gate is charged here, at attempt start.
func (s *SubmissionService) Create(user *model.User, challengeID uint, workflow json.RawMessage) (*model.Submission, error) {
	challenge, err := s.ChallengeRepo.FindByID(challengeID)
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

	submission := &model.Submission{
		UserID:      user.ID,
		ChallengeID: challengeID,
		Workflow:    datatypes.JSON(workflow),
		Status:      model.SubmissionPending,
	}
	if err := s.SubmissionRepo.Create(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *SubmissionService) Get(userID uint, id string) (*model.Submission, error) {
	submission, err := s.SubmissionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.UserID != userID {
		return nil, util.ErrSubmissionNotOwned
	}
	return submission, nil
}

func (s *SubmissionService) ListMine(userID uint, page, limit int) ([]model.Submission, int64, error) {
	return s.SubmissionRepo.FindByUser(userID, page, limit)
}
