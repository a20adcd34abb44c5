package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// attemptRepository implements domain.AttemptRepository using GORM
type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *gorm.DB) domain.AttemptRepository {
	return &attemptRepository{db: db}
}

// Create appends one judged run to the user's submission history
func (r *attemptRepository) Create(ctx context.Context, attempt *domain.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// FindByUserID returns the user's submission history, newest first
func (r *attemptRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Find(&attempts)
	return attempts, result.Error
}

// CountSolved derives the solved counter from the history: the number of
// distinct problems with at least one accepted attempt.
func (r *attemptRepository) CountSolved(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.Attempt{}).
		Where("user_id = ? AND verdict = ?", userID, domain.VerdictAccepted).
		Distinct("problem_id").
		Count(&count)
	return count, result.Error
}
