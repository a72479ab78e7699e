package service

import (
	"context"
	"encoding/json"
	"errors"
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/util"
	"flowlearn_backend/pkg/logger"
	"flowlearn_backend/pkg/monitoring"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Narrow interfaces so the grading path can be tested against fakes.
type evaluationSubmissionStore interface {
	FindByID(id string) (*model.Submission, error)
	CompleteEvaluation(submission *model.Submission) (bool, error)
}

type evaluationChallengeStore interface {
	FindByID(id uint) (*model.Challenge, error)
}

type workflowGrader interface {
	ChatJSON(ctx context.Context, system, prompt string) (string, error)
}

// progressTracker receives the side effects of a completed evaluation:
// XP, streak, leaderboard and achievement updates.
type progressTracker interface {
	RecordCompletion(userID uint, score, points int)
}

type EvaluationService struct {
	Submissions evaluationSubmissionStore
	Challenges  evaluationChallengeStore
	Grader      workflowGrader
	Progress    progressTracker
}

func NewEvaluationService(
	submissions evaluationSubmissionStore,
	challenges evaluationChallengeStore,
	grader workflowGrader,
	progress progressTracker,
) *EvaluationService {
	return &EvaluationService{
		Submissions: submissions,
		Challenges:  challenges,
		Grader:      grader,
		Progress:    progress,
	}
}

// EvaluatorReply is the JSON shape the grading prompt instructs the model
// to return. Parsed strictly; anything out of shape is rejected.
type EvaluatorReply struct {
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Feedback  GradingNotes   `json:"feedback"`
}

type ScoreBreakdown struct {
	Functionality *int `json:"functionality"`
	Structure     *int `json:"structure"`
	Efficiency    *int `json:"efficiency"`
	BestPractices *int `json:"bestPractices"`
}

type GradingNotes struct {
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

type EvaluateResult struct {
	Success  bool         `json:"success"`
	Score    int          `json:"score"`
	Points   int          `json:"points"`
	Feedback GradingNotes `json:"feedback"`
}

// EvaluateWorkflow grades a pending submission. The submission row is only
// touched after the model reply passes validation; any failure before the
// final write leaves the row pending so the user can resubmit.
func (s *EvaluationService) EvaluateWorkflow(ctx context.Context, userID uint, submissionID string, challengeID uint, workflow json.RawMessage) (*EvaluateResult, error) {
	submission, err := s.Submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.UserID != userID {
		return nil, util.ErrSubmissionNotOwned
	}
	if submission.Status != model.SubmissionPending {
		return nil, util.ErrSubmissionEvaluated
	}
	if submission.ChallengeID != challengeID {
		// A submission is only ever graded against the rubric and
		// multiplier of the challenge it was created for.
		return nil, util.ErrChallengeNotFound
	}

	challenge, err := s.Challenges.FindByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	start := time.Now()
	raw, err := s.Grader.ChatJSON(ctx, gradingSystemPrompt, buildGradingPrompt(challenge, workflow))
	monitoring.EvaluationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	reply, err := ParseEvaluatorReply(raw)
	if err != nil {
		logger.Log.Error("evaluator reply failed validation",
			zap.String("submission", submissionID), zap.Error(err))
		return nil, util.ErrMalformedModelReply
	}

	points := ComputePoints(reply.Score, challenge.Points, challenge.Difficulty)

	breakdownJSON, _ := json.Marshal(reply.Breakdown)
	feedbackJSON, _ := json.Marshal(reply.Feedback)

	submission.Score = reply.Score
	submission.Breakdown = datatypes.JSON(breakdownJSON)
	submission.Feedback = datatypes.JSON(feedbackJSON)
	submission.PointsAwarded = points

	won, err := s.Submissions.CompleteEvaluation(submission)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent evaluation finished first; its result stands.
		return nil, util.ErrSubmissionEvaluated
	}

	if s.Progress != nil {
		s.Progress.RecordCompletion(userID, reply.Score, points)
	}

	return &EvaluateResult{
		Success:  true,
		Score:    reply.Score,
		Points:   points,
		Feedback: reply.Feedback,
	}, nil
}

// ComputePoints applies the two-stage rounding: base points from the score
// percentage, then the difficulty multiplier.
func ComputePoints(score, challengePoints int, difficulty model.Difficulty) int {
	base := math.Round(float64(score) / 100 * float64(challengePoints))
	return int(math.Round(base * difficulty.Multiplier()))
}

// ParseEvaluatorReply parses and validates the model's JSON. Score must be
// 1..100 and all four breakdown categories must be present and in range.
func ParseEvaluatorReply(raw string) (*EvaluatorReply, error) {
	var reply EvaluatorReply
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &reply); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if reply.Score < 1 || reply.Score > 100 {
		return nil, fmt.Errorf("score %d out of range", reply.Score)
	}

	categories := map[string]*int{
		"functionality": reply.Breakdown.Functionality,
		"structure":     reply.Breakdown.Structure,
		"efficiency":    reply.Breakdown.Efficiency,
		"bestPractices": reply.Breakdown.BestPractices,
	}
	for name, v := range categories {
		if v == nil {
			return nil, fmt.Errorf("breakdown category %q missing", name)
		}
		if *v < 0 || *v > 100 {
			return nil, fmt.Errorf("breakdown category %q out of range: %d", name, *v)
		}
	}

	return &reply, nil
}

const gradingSystemPrompt = `You are an expert reviewer of automation workflows. ` +
	`Grade the submitted workflow JSON against the challenge rubric. ` +
	`Respond with a single JSON object and nothing else, using exactly this shape: ` +
	`{"score": <integer 1-100>, "breakdown": {"functionality": <0-100>, "structure": <0-100>, ` +
	`"efficiency": <0-100>, "bestPractices": <0-100>}, "feedback": {"strengths": [...], ` +
	`"weaknesses": [...], "suggestions": [...]}}`

func buildGradingPrompt(challenge *model.Challenge, workflow json.RawMessage) string {
	return fmt.Sprintf(
		"Challenge: %s\n\nDescription:\n%s\n\nRequirements:\n%s\n\nEvaluation rubric:\n%s\n\nSubmitted workflow JSON:\n%s",
		challenge.Title,
		challenge.Description,
		string(challenge.Requirements),
		string(challenge.EvaluationRubric),
		string(workflow),
	)
}
