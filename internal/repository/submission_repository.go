package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// submissionRepository implements domain.SubmissionRepository using GORM
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new contest submission repository
func NewSubmissionRepository(db *gorm.DB) domain.SubmissionRepository {
	return &submissionRepository{db: db}
}

// CreateIfAbsent inserts the submission unless the (user, contest, problem
// index) triple is already scored. ON CONFLICT DO NOTHING makes the check
// and the insert a single atomic statement, so two concurrent accepted
// attempts cannot both land.
func (r *submissionRepository) CreateIfAbsent(ctx context.Context, submission *domain.ContestSubmission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "contest_id"}, {Name: "problem_index"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByContestID returns all submissions for a contest in submission order
func (r *submissionRepository) FindByContestID(ctx context.Context, contestID uuid.UUID) ([]domain.ContestSubmission, error) {
	var submissions []domain.ContestSubmission
	result := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("submitted_at ASC").
		Find(&submissions)
	return submissions, result.Error
}

// CountByUserAndContest returns how many problems the user has solved in the contest
func (r *submissionRepository) CountByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&domain.ContestSubmission{}).
		Where("user_id = ? AND contest_id = ?", userID, contestID).
		Count(&count)
	return count, result.Error
}
