package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
)

func newProblemService(repo domain.ProblemRepository) *ProblemService {
	return NewProblemService(repo, noop.NewTracerProvider().Tracer("test"), zap.NewNop())
}

func TestCreateProblemSlugifiesTitle(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := newProblemService(repo)

	problem, err := svc.CreateProblem(context.Background(), &domain.CreateProblemRequest{
		Title:       "Sum of Two Numbers!",
		Description: "Add A and B.",
		Difficulty:  domain.DifficultyEasy,
		TestCases:   []string{"3 5", "8"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sum-of-two-numbers", problem.Slug)
	assert.Equal(t, 1, problem.TestCaseCount())
}

func TestCreateProblemValidation(t *testing.T) {
	svc := newProblemService(newFakeProblemRepo())
	ctx := context.Background()

	_, err := svc.CreateProblem(ctx, &domain.CreateProblemRequest{
		Title:       "Bad Difficulty",
		Description: "x",
		Difficulty:  "Impossible",
		TestCases:   []string{"1", "1"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	_, err = svc.CreateProblem(ctx, &domain.CreateProblemRequest{
		Title:       "No Tests",
		Description: "x",
		Difficulty:  domain.DifficultyEasy,
		TestCases:   []string{},
	})
	assert.ErrorIs(t, err, domain.ErrNoTestCases)

	_, err = svc.CreateProblem(ctx, &domain.CreateProblemRequest{
		Title:       "Dangling Input",
		Description: "x",
		Difficulty:  domain.DifficultyEasy,
		TestCases:   []string{"1", "1", "2"},
	})
	assert.ErrorIs(t, err, domain.ErrUnevenTestCases)
}
