package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// ProblemService handles problem-related business logic
type ProblemService struct {
	problemRepo domain.ProblemRepository
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewProblemService creates a new problem service
func NewProblemService(
	problemRepo domain.ProblemRepository,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		tracer:      tracer,
		logger:      logger,
	}
}

// CreateProblem validates and persists a new problem. Problems are immutable
// after creation; there is no update or delete path.
func (s *ProblemService) CreateProblem(ctx context.Context, req *domain.CreateProblemRequest) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.CreateProblem")
	defer span.End()

	span.SetAttributes(attribute.String("problem.title", req.Title))

	if !req.Difficulty.Valid() {
		return nil, domain.ErrInvalidDifficulty
	}
	if len(req.TestCases) == 0 {
		return nil, domain.ErrNoTestCases
	}
	if len(req.TestCases)%2 != 0 {
		return nil, domain.ErrUnevenTestCases
	}

	problem := &domain.Problem{
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		SampleInput:  req.SampleInput,
		SampleOutput: req.SampleOutput,
		Difficulty:   req.Difficulty,
		TestCases:    req.TestCases,
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		s.logger.Error("Failed to create problem", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Problem created",
		zap.String("problem_id", problem.ID.String()),
		zap.String("slug", problem.Slug),
		zap.Int("test_cases", problem.TestCaseCount()),
	)

	span.SetAttributes(attribute.String("problem.id", problem.ID.String()))
	return problem, nil
}

// GetAllProblems returns all problems
func (s *ProblemService) GetAllProblems(ctx context.Context) ([]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetAllProblems")
	defer span.End()

	return s.problemRepo.FindAll(ctx)
}

// GetProblemByID returns a specific problem
func (s *ProblemService) GetProblemByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ProblemService.GetProblemByID")
	defer span.End()

	span.SetAttributes(attribute.String("problem.id", id.String()))
	return s.problemRepo.FindByID(ctx, id)
}
