package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	lastWeek := now.AddDate(0, 0, -7)
	earlierToday := now.Add(-3 * time.Hour)

	t.Run("first activity starts at one", func(t *testing.T) {
		current, longest := NextStreak(0, 0, nil, now)
		assert.Equal(t, 1, current)
		assert.Equal(t, 1, longest)
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		current, longest := NextStreak(4, 6, &earlierToday, now)
		assert.Equal(t, 4, current)
		assert.Equal(t, 6, longest)
	})

	t.Run("consecutive day increments", func(t *testing.T) {
		current, longest := NextStreak(4, 6, &yesterday, now)
		assert.Equal(t, 5, current)
		assert.Equal(t, 6, longest)
	})

	t.Run("gap resets to one", func(t *testing.T) {
		current, longest := NextStreak(4, 6, &lastWeek, now)
		assert.Equal(t, 1, current)
		assert.Equal(t, 6, longest)
	})

	t.Run("longest streak follows a new record", func(t *testing.T) {
		current, longest := NextStreak(6, 6, &yesterday, now)
		assert.Equal(t, 7, current)
		assert.Equal(t, 7, longest)
	})

	t.Run("day boundary not elapsed time", func(t *testing.T) {
		// 23:50 yesterday to 00:10 today is consecutive even though less
		// than an hour passed.
		lastNight := time.Date(2026, 8, 25, 23, 50, 0, 0, time.UTC)
		justAfterMidnight := time.Date(2026, 8, 26, 0, 10, 0, 0, time.UTC)
		current, _ := NextStreak(2, 2, &lastNight, justAfterMidnight)
		assert.Equal(t, 3, current)
	})
}
