package service

import (
	"testing"

	"flowlearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score int
		want  model.SkillLevel
	}{
		{0, model.LevelBeginner},
		{39, model.LevelBeginner},
		{40, model.LevelIntermediate},
		{74, model.LevelIntermediate},
		{75, model.LevelAdvanced},
		{100, model.LevelAdvanced},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForScore(tc.score), "score=%d", tc.score)
	}
}
