package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/infrastructure"
	"github.com/chefforces-tocode/backend/internal/judge"
)

const leaderboardKeyPrefix = "leaderboard:"

// ContestService handles contest lifecycle, the submission flow, and
// leaderboard computation
type ContestService struct {
	contestRepo domain.ContestRepository
	problemRepo domain.ProblemRepository
	subRepo     domain.SubmissionRepository
	attemptRepo domain.AttemptRepository
	userRepo    domain.UserRepository
	judge       judge.Runner
	cache       *redis.Client
	cacheTTL    time.Duration
	metrics     *infrastructure.TelemetryMetrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewContestService creates a new contest service. cache may be nil, in
// which case leaderboards are always computed from the database.
func NewContestService(
	contestRepo domain.ContestRepository,
	problemRepo domain.ProblemRepository,
	subRepo domain.SubmissionRepository,
	attemptRepo domain.AttemptRepository,
	userRepo domain.UserRepository,
	runner judge.Runner,
	cache *redis.Client,
	cacheTTL time.Duration,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		problemRepo: problemRepo,
		subRepo:     subRepo,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		judge:       runner,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		tracer:      tracer,
		logger:      logger,
	}
}

// CreateContest validates and persists a new contest with its ordered
// problem list. Contests whose start time does not precede their end time
// are rejected.
func (s *ContestService) CreateContest(ctx context.Context, req *domain.CreateContestRequest) (*domain.Contest, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.CreateContest")
	defer span.End()

	span.SetAttributes(
		attribute.String("contest.name", req.Name),
		attribute.Int("contest.problems", len(req.ProblemIDs)),
	)

	if !req.StartTime.Before(req.EndTime) {
		return nil, domain.ErrInvalidContestTimes
	}

	// Every referenced problem must exist
	for _, pid := range req.ProblemIDs {
		if _, err := s.problemRepo.FindByID(ctx, pid); err != nil {
			return nil, err
		}
	}

	contest := &domain.Contest{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := s.contestRepo.Create(ctx, contest, req.ProblemIDs); err != nil {
		s.logger.Error("Failed to create contest", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Contest created",
		zap.String("contest_id", contest.ID.String()),
		zap.String("name", contest.Name),
		zap.Time("start_time", contest.StartTime),
		zap.Time("end_time", contest.EndTime),
	)

	return contest, nil
}

// GetAllContests returns all contests
func (s *ContestService) GetAllContests(ctx context.Context) ([]domain.Contest, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.GetAllContests")
	defer span.End()

	return s.contestRepo.FindAll(ctx)
}

// GetContestByID retrieves a contest with its ordered problem list
func (s *ContestService) GetContestByID(ctx context.Context, contestID uuid.UUID) (*domain.Contest, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.GetContestByID")
	defer span.End()

	span.SetAttributes(attribute.String("contest.id", contestID.String()))
	return s.contestRepo.FindByIDWithProblems(ctx, contestID)
}

// Register adds the user to the contest's registration set. Registering
// twice is a no-op; both calls succeed.
func (s *ContestService) Register(ctx context.Context, contestID, userID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ContestService.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("contest.id", contestID.String()),
		attribute.String("user.id", userID.String()),
	)

	if _, err := s.contestRepo.FindByID(ctx, contestID); err != nil {
		return err
	}

	if err := s.contestRepo.Register(ctx, contestID, userID); err != nil {
		s.logger.Error("Failed to register user for contest", zap.Error(err))
		return err
	}

	s.logger.Info("User registered for contest",
		zap.String("contest_id", contestID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// TestVerdict is the judged outcome of one test case within an attempt
type TestVerdict struct {
	Index      int    `json:"index"`
	Verdict    string `json:"verdict"`
	Output     string `json:"output,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// SubmitOutcome is the overall result of one contest submission attempt
type SubmitOutcome struct {
	Accepted         bool          `json:"accepted"`
	Verdict          string        `json:"verdict"`
	Tests            []TestVerdict `json:"tests"`
	TimeTakenSeconds int64         `json:"time_taken_seconds,omitempty"`
	Message          string        `json:"message,omitempty"`
}

// SubmitToContest runs one user's code against every test case of a contest
// problem and scores the attempt.
//
// The contest window is checked before any judging happens; attempts outside
// [start, end) never reach the judge. Test cases run sequentially, one judge
// call per (input, expected output) pair. The attempt is accepted only when
// every run comes back Accepted. An accepted attempt is recorded at most
// once per (user, contest, problem index) via an atomic conditional insert;
// a duplicate is reported as already scored, not as an error. Every judged
// attempt, accepted or not, is appended to the user's submission history.
func (s *ContestService) SubmitToContest(ctx context.Context, userID uuid.UUID, req *domain.ContestSubmitRequest) (*SubmitOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.SubmitToContest")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("contest.id", req.ContestID.String()),
		attribute.String("problem.id", req.ProblemID.String()),
	)

	contest, err := s.contestRepo.FindByIDWithProblems(ctx, req.ContestID)
	if err != nil {
		return nil, err
	}

	problemIndex := contest.ProblemIndex(req.ProblemID)
	if problemIndex < 0 {
		return nil, domain.ErrProblemNotInContest
	}

	now := time.Now()
	if !contest.IsRunning(now) {
		return nil, domain.ErrContestNotRunning
	}

	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	outcome := &SubmitOutcome{Accepted: true, Verdict: domain.VerdictAccepted}
	for i := 0; i < problem.TestCaseCount(); i++ {
		stdin, expected := problem.TestCase(i)

		result, err := s.runJudge(ctx, judge.Run{
			SourceCode:     req.SourceCode,
			LanguageID:     req.LanguageID,
			Stdin:          stdin,
			ExpectedOutput: expected,
		})
		if err != nil {
			// Transport failure: the attempt is not scored
			return nil, err
		}

		outcome.Tests = append(outcome.Tests, TestVerdict{
			Index:      i,
			Verdict:    result.Verdict,
			Output:     result.Stdout,
			Diagnostic: result.Diagnostic,
		})
		if !result.Accepted() && outcome.Accepted {
			outcome.Accepted = false
			outcome.Verdict = result.Verdict
		}
	}

	if outcome.Accepted {
		submittedAt := time.Now()
		outcome.TimeTakenSeconds = int64(submittedAt.Sub(contest.StartTime).Seconds())

		inserted, err := s.subRepo.CreateIfAbsent(ctx, &domain.ContestSubmission{
			UserID:           userID,
			ContestID:        contest.ID,
			ProblemIndex:     problemIndex,
			TimeTakenSeconds: outcome.TimeTakenSeconds,
			SubmittedAt:      submittedAt,
		})
		if err != nil {
			s.logger.Error("Failed to record contest submission", zap.Error(err))
			return nil, err
		}

		if inserted {
			outcome.Message = "Submission recorded"
			s.invalidateLeaderboard(ctx, contest.ID)
			if s.metrics != nil {
				s.metrics.ContestSubmissions.Add(ctx, 1,
					metric.WithAttributes(attribute.String("contest.id", contest.ID.String())),
				)
			}
		} else {
			outcome.Message = "Already submitted"
		}
	}

	s.recordAttempt(ctx, userID, problem, outcome.Verdict)

	s.logger.Info("Contest submission judged",
		zap.String("contest_id", contest.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("problem_index", problemIndex),
		zap.String("verdict", outcome.Verdict),
	)

	return outcome, nil
}

// runJudge wraps one judge call with a duration metric
func (s *ContestService) runJudge(ctx context.Context, run judge.Run) (*judge.Result, error) {
	start := time.Now()
	result, err := s.judge.Execute(ctx, run)
	if s.metrics != nil {
		s.metrics.JudgeRunDuration.Record(ctx, time.Since(start).Seconds())
	}
	return result, err
}

// recordAttempt appends the judged attempt to the user's history. History is
// an observability side effect of the attempt, so failures are logged and
// swallowed rather than failing an already-judged submission.
func (s *ContestService) recordAttempt(ctx context.Context, userID uuid.UUID, problem *domain.Problem, verdict string) {
	attempt := &domain.Attempt{
		UserID:       userID,
		ProblemID:    problem.ID,
		ProblemTitle: problem.Title,
		Verdict:      verdict,
		SubmittedAt:  time.Now(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record attempt",
			zap.String("user_id", userID.String()),
			zap.String("problem_id", problem.ID.String()),
			zap.Error(err),
		)
		return
	}
	if s.metrics != nil {
		s.metrics.AttemptsRecorded.Add(ctx, 1)
	}
}

// Leaderboard computes the contest standings: per user, the number of
// distinct problems solved and the total time across those submissions,
// ordered by solved count descending, then total time ascending. Ties on
// both keys keep their encounter order.
func (s *ContestService) Leaderboard(ctx context.Context, contestID uuid.UUID) ([]domain.LeaderboardRow, error) {
	ctx, span := s.tracer.Start(ctx, "ContestService.Leaderboard")
	defer span.End()

	span.SetAttributes(attribute.String("contest.id", contestID.String()))

	if rows, ok := s.cachedLeaderboard(ctx, contestID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return rows, nil
	}

	if _, err := s.contestRepo.FindByID(ctx, contestID); err != nil {
		return nil, err
	}

	submissions, err := s.subRepo.FindByContestID(ctx, contestID)
	if err != nil {
		return nil, err
	}

	rows := rankSubmissions(submissions)
	if err := s.attachUsernames(ctx, rows); err != nil {
		s.logger.Warn("Failed to resolve leaderboard usernames", zap.Error(err))
	}

	s.storeLeaderboard(ctx, contestID, rows)
	return rows, nil
}

// rankSubmissions folds one contest's submissions into ordered standings.
// Uniqueness per (user, problem index) is guaranteed at write time, but the
// fold still dedups defensively on the problem index.
func rankSubmissions(submissions []domain.ContestSubmission) []domain.LeaderboardRow {
	type standing struct {
		row    *domain.LeaderboardRow
		solved map[int]bool
	}

	byUser := make(map[uuid.UUID]*standing)
	order := make([]*domain.LeaderboardRow, 0)

	for _, sub := range submissions {
		st, ok := byUser[sub.UserID]
		if !ok {
			st = &standing{
				row:    &domain.LeaderboardRow{UserID: sub.UserID},
				solved: make(map[int]bool),
			}
			byUser[sub.UserID] = st
			order = append(order, st.row)
		}
		if !st.solved[sub.ProblemIndex] {
			st.solved[sub.ProblemIndex] = true
			st.row.ProblemsSolved++
			st.row.TotalTimeSeconds += sub.TimeTakenSeconds
		}
	}

	rows := make([]domain.LeaderboardRow, len(order))
	for i, row := range order {
		rows[i] = *row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProblemsSolved != rows[j].ProblemsSolved {
			return rows[i].ProblemsSolved > rows[j].ProblemsSolved
		}
		return rows[i].TotalTimeSeconds < rows[j].TotalTimeSeconds
	})

	return rows
}

// attachUsernames resolves display names for the ranked rows
func (s *ContestService) attachUsernames(ctx context.Context, rows []domain.LeaderboardRow) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for i := range rows {
		rows[i].Username = names[rows[i].UserID]
	}
	return nil
}

// cachedLeaderboard returns the cached standings for a contest, if any.
// Cache errors degrade to a miss.
func (s *ContestService) cachedLeaderboard(ctx context.Context, contestID uuid.UUID) ([]domain.LeaderboardRow, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, leaderboardKeyPrefix+contestID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var rows []domain.LeaderboardRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		s.logger.Warn("Leaderboard cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return rows, true
}

// storeLeaderboard caches computed standings with a short TTL
func (s *ContestService) storeLeaderboard(ctx context.Context, contestID uuid.UUID, rows []domain.LeaderboardRow) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, leaderboardKeyPrefix+contestID.String(), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Leaderboard cache write failed", zap.Error(err))
	}
}

// invalidateLeaderboard drops the cached standings after a newly recorded
// submission
func (s *ContestService) invalidateLeaderboard(ctx context.Context, contestID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardKeyPrefix+contestID.String()).Err(); err != nil {
		s.logger.Warn("Leaderboard cache invalidation failed", zap.Error(err))
	}
}
