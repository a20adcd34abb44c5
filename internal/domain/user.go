package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user of the platform
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Attempt is one judged run in a user's submission history, contest or
// practice. The verdict is stored verbatim from the judge. Solved counts are
// derived from attempts at read time, keyed on problem id, so they cannot
// drift from the history.
type Attempt struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ProblemID    uuid.UUID `json:"problem_id" gorm:"type:uuid;not null;index"`
	ProblemTitle string    `json:"problem_title" gorm:"not null"`
	Verdict      string    `json:"verdict" gorm:"not null"`
	SubmittedAt  time.Time `json:"submitted_at" gorm:"not null"`
}

// TableName specifies the table name for GORM
func (Attempt) TableName() string {
	return "attempts"
}

// VerdictAccepted is the verdict the judge reports for a passing run
const VerdictAccepted = "Accepted"

// Accepted reports whether this attempt passed
func (a *Attempt) Accepted() bool {
	return a.Verdict == VerdictAccepted
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
}

// AttemptRepository defines the interface for submission history data access
type AttemptRepository interface {
	Create(ctx context.Context, attempt *Attempt) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Attempt, error)
	// CountSolved returns the number of distinct problems the user has at
	// least one accepted attempt for.
	CountSolved(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserCreateRequest represents the signup payload
type UserCreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
}

// RecordAttemptRequest represents the practice attempt payload
type RecordAttemptRequest struct {
	ProblemID uuid.UUID `json:"problem_id" binding:"required"`
	Verdict   string    `json:"verdict" binding:"required"`
}

// UserResponse represents the public user data returned by the API
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts a User to a UserResponse (hides sensitive data)
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// UserProfile is a user together with their submission history and the
// derived solved counter
type UserProfile struct {
	User        UserResponse `json:"user"`
	Submissions []Attempt    `json:"submissions"`
	SolvedCount int64        `json:"solved_count"`
}
