package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Difficulty represents the difficulty level of a problem
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Problem represents a coding problem with its judge test data.
// TestCases is a flattened sequence: even indices are inputs, odd indices
// are the corresponding expected outputs. Its length is always even.
type Problem struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title        string         `json:"title" gorm:"not null"`
	Slug         string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description  string         `json:"description" gorm:"type:text;not null"`
	SampleInput  string         `json:"sample_input" gorm:"type:text"`
	SampleOutput string         `json:"sample_output" gorm:"type:text"`
	Difficulty   Difficulty     `json:"difficulty" gorm:"type:varchar(10);not null"`
	TestCases    pq.StringArray `json:"test_cases" gorm:"type:text[];not null"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Problem) TableName() string {
	return "problems"
}

// TestCaseCount returns the number of (input, expected output) pairs
func (p *Problem) TestCaseCount() int {
	return len(p.TestCases) / 2
}

// TestCase returns the i-th (input, expected output) pair
func (p *Problem) TestCase(i int) (input, expected string) {
	return p.TestCases[2*i], p.TestCases[2*i+1]
}

// ProblemRepository defines the interface for problem data access
type ProblemRepository interface {
	Create(ctx context.Context, problem *Problem) error
	CreateBatch(ctx context.Context, problems []Problem) error
	FindByID(ctx context.Context, id uuid.UUID) (*Problem, error)
	FindAll(ctx context.Context) ([]Problem, error)
	Count(ctx context.Context) (int64, error)
}

// CreateProblemRequest represents the authoring form payload
type CreateProblemRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description" binding:"required"`
	SampleInput  string     `json:"sample_input"`
	SampleOutput string     `json:"sample_output"`
	Difficulty   Difficulty `json:"difficulty" binding:"required"`
	TestCases    []string   `json:"test_cases" binding:"required"`
}

// ProblemResponse represents a problem in API responses.
// Judge test data is omitted so contestants cannot read expected outputs.
type ProblemResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	SampleInput  string     `json:"sample_input"`
	SampleOutput string     `json:"sample_output"`
	Difficulty   Difficulty `json:"difficulty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse converts a Problem to a ProblemResponse
func (p *Problem) ToResponse() ProblemResponse {
	return ProblemResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		SampleInput:  p.SampleInput,
		SampleOutput: p.SampleOutput,
		Difficulty:   p.Difficulty,
		CreatedAt:    p.CreatedAt,
	}
}
