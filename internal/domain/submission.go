package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContestSubmission records a user's first accepted attempt on one contest
// problem. The composite unique index backs the insert-if-absent write, so
// at most one row can exist per (user, contest, problem index) even under
// concurrent submissions.
type ContestSubmission struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_contest_submission_once,priority:1"`
	ContestID        uuid.UUID `json:"contest_id" gorm:"type:uuid;not null;uniqueIndex:idx_contest_submission_once,priority:2"`
	ProblemIndex     int       `json:"problem_index" gorm:"not null;uniqueIndex:idx_contest_submission_once,priority:3"`
	TimeTakenSeconds int64     `json:"time_taken_seconds" gorm:"not null"`
	SubmittedAt      time.Time `json:"submitted_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (ContestSubmission) TableName() string {
	return "contest_submissions"
}

// SubmissionRepository defines the interface for contest submission data access
type SubmissionRepository interface {
	// CreateIfAbsent inserts the submission unless one already exists for the
	// same (user, contest, problem index). It reports whether a row was
	// actually inserted.
	CreateIfAbsent(ctx context.Context, submission *ContestSubmission) (bool, error)
	FindByContestID(ctx context.Context, contestID uuid.UUID) ([]ContestSubmission, error)
	CountByUserAndContest(ctx context.Context, userID, contestID uuid.UUID) (int64, error)
}

// ContestSubmitRequest is the contest submission payload
type ContestSubmitRequest struct {
	ContestID  uuid.UUID `json:"contest_id" binding:"required"`
	ProblemID  uuid.UUID `json:"problem_id" binding:"required"`
	SourceCode string    `json:"source_code" binding:"required"`
	LanguageID int       `json:"language_id" binding:"required"`
}

// LeaderboardRow is one user's standing within a contest
type LeaderboardRow struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	ProblemsSolved   int       `json:"problems_solved"`
	TotalTimeSeconds int64     `json:"total_time_seconds"`
}
