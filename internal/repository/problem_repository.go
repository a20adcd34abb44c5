package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// problemRepository implements domain.ProblemRepository using GORM
type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository creates a new problem repository
func NewProblemRepository(db *gorm.DB) domain.ProblemRepository {
	return &problemRepository{db: db}
}

// Create creates a new problem in the database
func (r *problemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	err := r.db.WithContext(ctx).Create(problem).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrProblemSlugTaken
	}
	return err
}

// CreateBatch creates multiple problems in a single transaction
func (r *problemRepository) CreateBatch(ctx context.Context, problems []domain.Problem) error {
	return r.db.WithContext(ctx).CreateInBatches(problems, 50).Error
}

// FindByID finds a problem by its ID
func (r *problemRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Problem, error) {
	var problem domain.Problem
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, result.Error
	}
	return &problem, nil
}

// FindAll returns all problems ordered by creation date
func (r *problemRepository) FindAll(ctx context.Context) ([]domain.Problem, error) {
	var problems []domain.Problem
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&problems)
	return problems, result.Error
}

// Count returns the total number of problems
func (r *problemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Problem{}).Count(&count)
	return count, result.Error
}
