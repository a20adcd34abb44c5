package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyValid(t *testing.T) {
	assert.True(t, DifficultyEasy.Valid())
	assert.True(t, DifficultyMedium.Valid())
	assert.True(t, DifficultyHard.Valid())
	assert.False(t, Difficulty("Impossible").Valid())
	assert.False(t, Difficulty("easy").Valid())
}

func TestProblemTestCasePairs(t *testing.T) {
	problem := &Problem{
		TestCases: []string{"3 5", "8", "-4 10", "6", "0 0", "0"},
	}

	assert.Equal(t, 3, problem.TestCaseCount())

	input, expected := problem.TestCase(0)
	assert.Equal(t, "3 5", input)
	assert.Equal(t, "8", expected)

	input, expected = problem.TestCase(2)
	assert.Equal(t, "0 0", input)
	assert.Equal(t, "0", expected)
}

func TestProblemResponseHidesTestCases(t *testing.T) {
	problem := &Problem{
		Title:     "Sum of Two Numbers",
		TestCases: []string{"3 5", "8"},
	}

	payload, err := json.Marshal(problem.ToResponse())
	assert.NoError(t, err)
	assert.Equal(t, "Sum of Two Numbers", problem.ToResponse().Title)
	assert.NotContains(t, string(payload), "test_cases")
	assert.NotContains(t, string(payload), "3 5")
}
