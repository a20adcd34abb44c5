package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Contest represents a timed contest over an ordered set of problems.
// A contest is running during the half-open window [StartTime, EndTime).
type Contest struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Problems      []ContestProblem      `json:"problems,omitempty" gorm:"foreignKey:ContestID"`
	Registrations []ContestRegistration `json:"-" gorm:"foreignKey:ContestID"`
}

// TableName specifies the table name for GORM
func (Contest) TableName() string {
	return "contests"
}

// IsRunning reports whether the contest accepts submissions at the given
// instant. The window is half-open: submissions at exactly EndTime are late.
func (c *Contest) IsRunning(now time.Time) bool {
	return !now.Before(c.StartTime) && now.Before(c.EndTime)
}

// ProblemIndex returns the position of a problem in the contest's ordered
// problem list, or -1 if the problem is not part of the contest.
func (c *Contest) ProblemIndex(problemID uuid.UUID) int {
	for _, cp := range c.Problems {
		if cp.ProblemID == problemID {
			return cp.Position
		}
	}
	return -1
}

// ContestProblem ties a problem into a contest at a fixed position
type ContestProblem struct {
	ContestID uuid.UUID `json:"contest_id" gorm:"type:uuid;primaryKey"`
	ProblemID uuid.UUID `json:"problem_id" gorm:"type:uuid;primaryKey"`
	Position  int       `json:"position" gorm:"not null"`

	Problem Problem `json:"problem" gorm:"foreignKey:ProblemID"`
}

// TableName specifies the table name for GORM
func (ContestProblem) TableName() string {
	return "contest_problems"
}

// ContestRegistration records one user's registration for a contest.
// The composite primary key gives the registration set its idempotence.
type ContestRegistration struct {
	ContestID    uuid.UUID `json:"contest_id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (ContestRegistration) TableName() string {
	return "contest_registrations"
}

// ContestRepository defines the interface for contest data access
type ContestRepository interface {
	Create(ctx context.Context, contest *Contest, problemIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Contest, error)
	FindByIDWithProblems(ctx context.Context, id uuid.UUID) (*Contest, error)
	FindAll(ctx context.Context) ([]Contest, error)
	Register(ctx context.Context, contestID, userID uuid.UUID) error
	RegisteredUserIDs(ctx context.Context, contestID uuid.UUID) ([]uuid.UUID, error)
}

// CreateContestRequest represents the contest authoring payload
type CreateContestRequest struct {
	Name       string      `json:"name" binding:"required"`
	StartTime  time.Time   `json:"start_time" binding:"required"`
	EndTime    time.Time   `json:"end_time" binding:"required"`
	ProblemIDs []uuid.UUID `json:"problem_ids" binding:"required,min=1"`
}

// RegisterRequest represents a contest registration payload
type RegisterRequest struct {
	ContestID uuid.UUID `json:"contest_id" binding:"required"`
}

// ContestResponse represents a contest in API responses
type ContestResponse struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	ProblemIDs []uuid.UUID `json:"problem_ids"`
	Running    bool        `json:"running"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ToResponse converts a Contest to a ContestResponse
func (c *Contest) ToResponse(now time.Time) ContestResponse {
	ids := make([]uuid.UUID, len(c.Problems))
	for i, cp := range c.Problems {
		ids[i] = cp.ProblemID
	}
	return ContestResponse{
		ID:         c.ID,
		Name:       c.Name,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		ProblemIDs: ids,
		Running:    c.IsRunning(now),
		CreatedAt:  c.CreatedAt,
	}
}
