package service

import (
	"encoding/json"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/repository"
	"flowlearn_backend/internal/util"

	"gorm.io/datatypes"
)

type AssessmentService struct {
	AssessmentRepo *repository.AssessmentRepository
	UserRepo       *repository.UserRepository
}

func NewAssessmentService(assessmentRepo *repository.AssessmentRepository, userRepo *repository.UserRepository) *AssessmentService {
	return &AssessmentService{
		AssessmentRepo: assessmentRepo,
		UserRepo:       userRepo,
	}
}

// QuizQuestion is the student-facing shape; the correct index never leaves
// the server.
type QuizQuestion struct {
	ID      uint           `json:"id"`
	Text    string         `json:"text"`
	Choices datatypes.JSON `json:"choices"`
}

func (s *AssessmentService) GetQuestions() ([]QuizQuestion, error) {
	questions, err := s.AssessmentRepo.FindEnabledQuestions()
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	out := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		out[i] = QuizQuestion{ID: q.ID, Text: q.Text, Choices: q.Choices}
	}
	return out, nil
}

type QuizAnswer struct {
	QuestionID  uint `json:"questionId" binding:"required"`
	ChoiceIndex int  `json:"choiceIndex"`
}

type QuizOutcome struct {
	Score int              `json:"score"`
	Level model.SkillLevel `json:"level"`
	Total int              `json:"total"`
}

// Submit grades the quiz by weighted percentage, maps it to a skill level,
// stores the run and stamps the profile. Retakes simply append; the
// latest result wins.
func (s *AssessmentService) Submit(userID uint, answers []QuizAnswer) (*QuizOutcome, error) {
	ids := make([]uint, len(answers))
	byQuestion := make(map[uint]int, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
		byQuestion[a.QuestionID] = a.ChoiceIndex
	}

	questions, err := s.AssessmentRepo.FindQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	totalWeight, earned := 0, 0
	for _, q := range questions {
		totalWeight += q.Weight
		if choice, ok := byQuestion[q.ID]; ok && choice == q.CorrectIndex {
			earned += q.Weight
		}
	}

	score := 0
	if totalWeight > 0 {
		score = earned * 100 / totalWeight
	}
	level := LevelForScore(score)

	answersJSON, _ := json.Marshal(answers)
	result := &model.AssessmentResult{
		UserID:     userID,
		Score:      score,
		Level:      level,
		Answers:    datatypes.JSON(answersJSON),
		TotalCount: len(questions),
	}
	if err := s.AssessmentRepo.CreateResult(result); err != nil {
		return nil, err
	}
	if err := s.UserRepo.UpdateSkillLevel(userID, level); err != nil {
		return nil, err
	}

	return &QuizOutcome{Score: score, Level: level, Total: len(questions)}, nil
}

// LevelForScore maps a quiz percentage to a skill level.
func LevelForScore(score int) model.SkillLevel {
	switch {
	case score >= 75:
		return model.LevelAdvanced
	case score >= 40:
		return model.LevelIntermediate
	default:
		return model.LevelBeginner
	}
}
