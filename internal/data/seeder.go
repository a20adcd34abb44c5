package data

import (
	_ "embed"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chefforces-tocode/backend/internal/domain"
)

//go:embed starter_problems.json
var starterProblemsData []byte

// problemJSON represents the JSON structure for seed problems.
// Test cases are stored flattened: even indices are inputs, odd
// indices are the matching expected outputs.
type problemJSON struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	SampleInput  string   `json:"sample_input"`
	SampleOutput string   `json:"sample_output"`
	TestCases    []string `json:"test_cases"`
}

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

// SeedProblems seeds the problems table with the embedded starter set.
// It is a no-op when the table already has rows.
func (s *Seeder) SeedProblems() error {
	s.logger.Info("Starting to seed problems...")

	var count int64
	if err := s.db.Model(&domain.Problem{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.logger.Info("Problems already seeded, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	problems, err := GetEmbeddedProblems()
	if err != nil {
		return err
	}

	if err := s.db.CreateInBatches(problems, 50).Error; err != nil {
		return err
	}

	s.logger.Info("Successfully seeded problems",
		zap.Int("count", len(problems)),
	)

	return nil
}

// GetEmbeddedProblems returns the embedded starter problems.
// Useful for testing or direct access
func GetEmbeddedProblems() ([]domain.Problem, error) {
	var problemsJSON []problemJSON
	if err := json.Unmarshal(starterProblemsData, &problemsJSON); err != nil {
		return nil, err
	}

	problems := make([]domain.Problem, len(problemsJSON))
	for i, p := range problemsJSON {
		problems[i] = domain.Problem{
			ID:           uuid.New(),
			Title:        p.Title,
			Slug:         slug.Make(p.Title),
			Description:  p.Description,
			SampleInput:  p.SampleInput,
			SampleOutput: p.SampleOutput,
			Difficulty:   domain.Difficulty(p.Difficulty),
			TestCases:    p.TestCases,
		}
	}

	return problems, nil
}
