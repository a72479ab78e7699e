package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubmissionStore struct {
	submissions map[string]*model.Submission
	completeErr error
	loseRace    bool
	completed   *model.Submission
}

func (f *fakeSubmissionStore) FindByID(id string) (*model.Submission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (f *fakeSubmissionStore) CompleteEvaluation(submission *model.Submission) (bool, error) {
	if f.completeErr != nil {
		return false, f.completeErr
	}
	if f.loseRace {
		return false, nil
	}
	f.completed = submission
	return true, nil
}

type fakeChallengeStore struct {
	challenges map[uint]*model.Challenge
}

func (f *fakeChallengeStore) FindByID(id uint) (*model.Challenge, error) {
	ch, ok := f.challenges[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ch, nil
}

type fakeGrader struct {
	reply string
	err   error
	calls int
}

func (f *fakeGrader) ChatJSON(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeProgress struct {
	userID uint
	score  int
	points int
	calls  int
}

func (f *fakeProgress) RecordCompletion(userID uint, score, points int) {
	f.calls++
	f.userID = userID
	f.score = score
	f.points = points
}

const validReply = `{"score": 80, "breakdown": {"functionality": 85, "structure": 80, "efficiency": 75, "bestPractices": 80}, "feedback": {"strengths": ["clean"], "weaknesses": [], "suggestions": ["add retries"]}}`

func newEvaluationFixture(reply string) (*EvaluationService, *fakeSubmissionStore, *fakeGrader, *fakeProgress) {
	subs := &fakeSubmissionStore{
		submissions: map[string]*model.Submission{
			"sub-1": {UserID: 7, ChallengeID: 3, Status: model.SubmissionPending},
		},
	}
	challenges := &fakeChallengeStore{
		challenges: map[uint]*model.Challenge{
			3: {Title: "HTTP fan-out", Points: 100, Difficulty: model.DifficultyHard},
		},
	}
	grader := &fakeGrader{reply: reply}
	progress := &fakeProgress{}
	return NewEvaluationService(subs, challenges, grader, progress), subs, grader, progress
}

func TestComputePoints(t *testing.T) {
	cases := []struct {
		name       string
		score      int
		points     int
		difficulty model.Difficulty
		want       int
	}{
		{"perfect easy", 100, 100, model.DifficultyEasy, 100},
		{"80 on hard doubles", 80, 100, model.DifficultyHard, 160},
		{"medium multiplies after base rounding", 33, 100, model.DifficultyMedium, 50},
		{"expert rounds each stage", 95, 150, model.DifficultyExpert, 429},
		{"zero score", 0, 100, model.DifficultyHard, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputePoints(tc.score, tc.points, tc.difficulty))
		})
	}
}

func TestParseEvaluatorReply(t *testing.T) {
	t.Run("valid reply", func(t *testing.T) {
		reply, err := ParseEvaluatorReply(validReply)
		require.NoError(t, err)
		assert.Equal(t, 80, reply.Score)
		require.NotNil(t, reply.Breakdown.Functionality)
		assert.Equal(t, 85, *reply.Breakdown.Functionality)
		assert.Equal(t, []string{"clean"}, reply.Feedback.Strengths)
	})

	t.Run("fenced reply is accepted", func(t *testing.T) {
		reply, err := ParseEvaluatorReply("```json\n" + validReply + "\n```")
		require.NoError(t, err)
		assert.Equal(t, 80, reply.Score)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := ParseEvaluatorReply("I would rate this workflow an 8/10.")
		assert.Error(t, err)
	})

	t.Run("score out of range", func(t *testing.T) {
		_, err := ParseEvaluatorReply(`{"score": 0, "breakdown": {"functionality": 1, "structure": 1, "efficiency": 1, "bestPractices": 1}, "feedback": {}}`)
		assert.Error(t, err)

		_, err = ParseEvaluatorReply(`{"score": 101, "breakdown": {"functionality": 1, "structure": 1, "efficiency": 1, "bestPractices": 1}, "feedback": {}}`)
		assert.Error(t, err)
	})

	t.Run("missing breakdown category", func(t *testing.T) {
		_, err := ParseEvaluatorReply(`{"score": 50, "breakdown": {"functionality": 50, "structure": 50, "efficiency": 50}, "feedback": {}}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bestPractices")
	})

	t.Run("breakdown category out of range", func(t *testing.T) {
		_, err := ParseEvaluatorReply(`{"score": 50, "breakdown": {"functionality": 120, "structure": 50, "efficiency": 50, "bestPractices": 50}, "feedback": {}}`)
		assert.Error(t, err)
	})
}

func TestEvaluateWorkflow(t *testing.T) {
	workflow := json.RawMessage(`{"nodes": []}`)

	t.Run("happy path awards points and records progress", func(t *testing.T) {
		svc, subs, _, progress := newEvaluationFixture(validReply)

		result, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 3, workflow)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 80, result.Score)
		assert.Equal(t, 160, result.Points)
		assert.Equal(t, []string{"add retries"}, result.Feedback.Suggestions)

		require.NotNil(t, subs.completed)
		assert.Equal(t, 80, subs.completed.Score)
		assert.Equal(t, 160, subs.completed.PointsAwarded)

		assert.Equal(t, 1, progress.calls)
		assert.Equal(t, uint(7), progress.userID)
		assert.Equal(t, 160, progress.points)
	})

	t.Run("unknown submission", func(t *testing.T) {
		svc, _, grader, _ := newEvaluationFixture(validReply)

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "missing", 3, workflow)
		assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
		assert.Zero(t, grader.calls)
	})

	t.Run("submission owned by someone else", func(t *testing.T) {
		svc, _, grader, _ := newEvaluationFixture(validReply)

		_, err := svc.EvaluateWorkflow(context.Background(), 99, "sub-1", 3, workflow)
		assert.ErrorIs(t, err, util.ErrSubmissionNotOwned)
		assert.Zero(t, grader.calls)
	})

	t.Run("already evaluated", func(t *testing.T) {
		svc, subs, grader, _ := newEvaluationFixture(validReply)
		subs.submissions["sub-1"].Status = model.SubmissionCompleted

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 3, workflow)
		assert.ErrorIs(t, err, util.ErrSubmissionEvaluated)
		assert.Zero(t, grader.calls)
	})

	t.Run("grading against a different challenge is rejected", func(t *testing.T) {
		svc, subs, grader, _ := newEvaluationFixture(validReply)

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 4, workflow)
		assert.ErrorIs(t, err, util.ErrChallengeNotFound)
		assert.Zero(t, grader.calls)
		assert.Equal(t, model.SubmissionPending, subs.submissions["sub-1"].Status)
	})

	t.Run("malformed reply leaves submission pending", func(t *testing.T) {
		svc, subs, _, progress := newEvaluationFixture("the workflow looks great, 10/10")

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 3, workflow)
		assert.ErrorIs(t, err, util.ErrMalformedModelReply)
		assert.Nil(t, subs.completed)
		assert.Equal(t, model.SubmissionPending, subs.submissions["sub-1"].Status)
		assert.Zero(t, progress.calls)
	})

	t.Run("store write failure reports the error without progress effects", func(t *testing.T) {
		svc, subs, _, progress := newEvaluationFixture(validReply)
		subs.completeErr = errors.New("connection reset")

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 3, workflow)
		require.Error(t, err)
		assert.Equal(t, model.SubmissionPending, subs.submissions["sub-1"].Status)
		assert.Zero(t, progress.calls)
	})

	t.Run("losing the completion race reports already evaluated", func(t *testing.T) {
		svc, subs, _, progress := newEvaluationFixture(validReply)
		subs.loseRace = true

		_, err := svc.EvaluateWorkflow(context.Background(), 7, "sub-1", 3, workflow)
		assert.ErrorIs(t, err, util.ErrSubmissionEvaluated)
		assert.Zero(t, progress.calls)
	})
}
