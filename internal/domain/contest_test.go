package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestContestIsRunningHalfOpenWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	contest := &Contest{StartTime: start, EndTime: end}

	assert.False(t, contest.IsRunning(start.Add(-time.Second)))
	assert.True(t, contest.IsRunning(start))
	assert.True(t, contest.IsRunning(start.Add(time.Hour)))
	assert.True(t, contest.IsRunning(end.Add(-time.Second)))
	assert.False(t, contest.IsRunning(end))
	assert.False(t, contest.IsRunning(end.Add(time.Hour)))
}

func TestContestProblemIndex(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	contest := &Contest{
		Problems: []ContestProblem{
			{ProblemID: first, Position: 0},
			{ProblemID: second, Position: 1},
		},
	}

	assert.Equal(t, 0, contest.ProblemIndex(first))
	assert.Equal(t, 1, contest.ProblemIndex(second))
	assert.Equal(t, -1, contest.ProblemIndex(uuid.New()))
}

func TestContestToResponse(t *testing.T) {
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	problemID := uuid.New()
	contest := &Contest{
		ID:        uuid.New(),
		Name:      "Weekly Round 3",
		StartTime: start,
		EndTime:   end,
		Problems:  []ContestProblem{{ProblemID: problemID, Position: 0}},
	}

	resp := contest.ToResponse(time.Now())
	assert.True(t, resp.Running)
	assert.Equal(t, []uuid.UUID{problemID}, resp.ProblemIDs)

	resp = contest.ToResponse(end.Add(time.Minute))
	assert.False(t, resp.Running)
}
