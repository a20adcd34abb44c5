package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// setupTestDB opens an in-memory sqlite database with a schema equivalent
// to the production one. The production models default their ids to
// gen_random_uuid(), which sqlite does not have, so the tables are created
// by hand and the tests set ids explicitly.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE users (
			id text PRIMARY KEY,
			email text NOT NULL UNIQUE,
			username text NOT NULL,
			password_hash text NOT NULL,
			created_at datetime,
			updated_at datetime
		)`,
		`CREATE TABLE contests (
			id text PRIMARY KEY,
			name text NOT NULL,
			start_time datetime NOT NULL,
			end_time datetime NOT NULL,
			created_at datetime
		)`,
		`CREATE TABLE contest_problems (
			contest_id text NOT NULL,
			problem_id text NOT NULL,
			position integer NOT NULL,
			PRIMARY KEY (contest_id, problem_id)
		)`,
		`CREATE TABLE contest_registrations (
			contest_id text NOT NULL,
			user_id text NOT NULL,
			registered_at datetime NOT NULL,
			PRIMARY KEY (contest_id, user_id)
		)`,
		`CREATE TABLE contest_submissions (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			contest_id text NOT NULL,
			problem_index integer NOT NULL,
			time_taken_seconds integer NOT NULL,
			submitted_at datetime NOT NULL,
			UNIQUE (user_id, contest_id, problem_index)
		)`,
		`CREATE TABLE attempts (
			id text PRIMARY KEY,
			user_id text NOT NULL,
			problem_id text NOT NULL,
			problem_title text NOT NULL,
			verdict text NOT NULL,
			submitted_at datetime NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestSubmissionCreateIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	contestID := uuid.New()

	inserted, err := repo.CreateIfAbsent(ctx, &domain.ContestSubmission{
		ID:               uuid.New(),
		UserID:           userID,
		ContestID:        contestID,
		ProblemIndex:     0,
		TimeTakenSeconds: 120,
		SubmittedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same triple again: no new row, no error
	inserted, err = repo.CreateIfAbsent(ctx, &domain.ContestSubmission{
		ID:               uuid.New(),
		UserID:           userID,
		ContestID:        contestID,
		ProblemIndex:     0,
		TimeTakenSeconds: 300,
		SubmittedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	// A different problem index is a fresh row
	inserted, err = repo.CreateIfAbsent(ctx, &domain.ContestSubmission{
		ID:               uuid.New(),
		UserID:           userID,
		ContestID:        contestID,
		ProblemIndex:     1,
		TimeTakenSeconds: 200,
		SubmittedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := repo.CountByUserAndContest(ctx, userID, contestID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	subs, err := repo.FindByContestID(ctx, contestID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(120), subs[0].TimeTakenSeconds)
}

func TestSubmissionFindByContestIDScopesToContest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	contestA := uuid.New()
	contestB := uuid.New()

	for _, contestID := range []uuid.UUID{contestA, contestA, contestB} {
		_, err := repo.CreateIfAbsent(ctx, &domain.ContestSubmission{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			ContestID:    contestID,
			ProblemIndex: 0,
			SubmittedAt:  time.Now(),
		})
		require.NoError(t, err)
	}

	subs, err := repo.FindByContestID(ctx, contestA)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestContestRegisterIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	contestID := uuid.New()
	userID := uuid.New()

	require.NoError(t, repo.Register(ctx, contestID, userID))
	require.NoError(t, repo.Register(ctx, contestID, userID))

	ids, err := repo.RegisteredUserIDs(ctx, contestID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, ids)

	other := uuid.New()
	require.NoError(t, repo.Register(ctx, contestID, other))

	ids, err = repo.RegisteredUserIDs(ctx, contestID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestContestCreateAndFindWithProblems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	problemIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	contest := &domain.Contest{
		ID:        uuid.New(),
		Name:      "Weekly Round 7",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(2 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, contest, problemIDs))

	found, err := repo.FindByIDWithProblems(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, found.Problems, 3)
	for i, cp := range found.Problems {
		assert.Equal(t, i, cp.Position)
		assert.Equal(t, problemIDs[i], cp.ProblemID)
	}

	assert.Equal(t, 1, found.ProblemIndex(problemIDs[1]))
	assert.Equal(t, -1, found.ProblemIndex(uuid.New()))
}

func TestContestFindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContestRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrContestNotFound)
}

func TestAttemptCountSolvedIsDerivedAndDistinct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	problemA := uuid.New()
	problemB := uuid.New()

	record := func(problemID uuid.UUID, verdict string) {
		require.NoError(t, repo.Create(ctx, &domain.Attempt{
			ID:           uuid.New(),
			UserID:       userID,
			ProblemID:    problemID,
			ProblemTitle: "p",
			Verdict:      verdict,
			SubmittedAt:  time.Now(),
		}))
	}

	record(problemA, "Wrong Answer")
	solved, err := repo.CountSolved(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), solved)

	record(problemA, domain.VerdictAccepted)
	record(problemA, domain.VerdictAccepted)
	solved, err = repo.CountSolved(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), solved)

	record(problemB, domain.VerdictAccepted)
	solved, err = repo.CountSolved(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), solved)

	// Another user's attempts do not leak in
	solved, err = repo.CountSolved(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), solved)
}

func TestAttemptFindByUserIDNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now()

	for i, verdict := range []string{"Wrong Answer", domain.VerdictAccepted} {
		require.NoError(t, repo.Create(ctx, &domain.Attempt{
			ID:           uuid.New(),
			UserID:       userID,
			ProblemID:    uuid.New(),
			ProblemTitle: "p",
			Verdict:      verdict,
			SubmittedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	attempts, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, domain.VerdictAccepted, attempts[0].Verdict)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "chef@example.com",
		Username:     "chef",
		PasswordHash: "x",
	}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Create(ctx, &domain.User{
		ID:           uuid.New(),
		Email:        "chef@example.com",
		Username:     "imposter",
		PasswordHash: "y",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUserFindByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	a := &domain.User{ID: uuid.New(), Email: "a@example.com", Username: "a", PasswordHash: "x"}
	b := &domain.User{ID: uuid.New(), Email: "b@example.com", Username: "b", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	users, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
