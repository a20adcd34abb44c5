package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// contestRepository implements domain.ContestRepository using GORM
type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository creates a new contest repository
func NewContestRepository(db *gorm.DB) domain.ContestRepository {
	return &contestRepository{db: db}
}

// Create creates a contest together with its ordered problem list
func (r *contestRepository) Create(ctx context.Context, contest *domain.Contest, problemIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contest).Error; err != nil {
			return err
		}
		contestProblems := make([]domain.ContestProblem, len(problemIDs))
		for i, pid := range problemIDs {
			contestProblems[i] = domain.ContestProblem{
				ContestID: contest.ID,
				ProblemID: pid,
				Position:  i,
			}
		}
		if err := tx.Create(&contestProblems).Error; err != nil {
			return err
		}
		contest.Problems = contestProblems
		return nil
	})
}

// FindByID finds a contest by its ID (without problems)
func (r *contestRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Contest, error) {
	var contest domain.Contest
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&contest)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContestNotFound
		}
		return nil, result.Error
	}
	return &contest, nil
}

// FindByIDWithProblems finds a contest with its ordered problem list loaded
func (r *contestRepository) FindByIDWithProblems(ctx context.Context, id uuid.UUID) (*domain.Contest, error) {
	var contest domain.Contest
	result := r.db.WithContext(ctx).
		Preload("Problems", func(db *gorm.DB) *gorm.DB {
			return db.Order("contest_problems.position ASC")
		}).
		Where("id = ?", id).
		First(&contest)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContestNotFound
		}
		return nil, result.Error
	}
	return &contest, nil
}

// FindAll returns all contests ordered by start time
func (r *contestRepository) FindAll(ctx context.Context) ([]domain.Contest, error) {
	var contests []domain.Contest
	result := r.db.WithContext(ctx).
		Preload("Problems", func(db *gorm.DB) *gorm.DB {
			return db.Order("contest_problems.position ASC")
		}).
		Order("start_time DESC").
		Find(&contests)
	return contests, result.Error
}

// Register adds the user to the contest's registration set. The insert is
// conditional on the composite primary key, so repeated calls are no-ops.
func (r *contestRepository) Register(ctx context.Context, contestID, userID uuid.UUID) error {
	registration := domain.ContestRegistration{
		ContestID:    contestID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&registration).Error
}

// RegisteredUserIDs returns the ids of all users registered for the contest
func (r *contestRepository) RegisteredUserIDs(ctx context.Context, contestID uuid.UUID) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&domain.ContestRegistration{}).
		Where("contest_id = ?", contestID).
		Order("registered_at ASC").
		Pluck("user_id", &userIDs)
	if result.Error != nil {
		return nil, result.Error
	}
	return userIDs, nil
}
