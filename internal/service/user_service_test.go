package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/infrastructure"
)

func newUserService(userRepo domain.UserRepository, attemptRepo domain.AttemptRepository, problemRepo domain.ProblemRepository) *UserService {
	return NewUserService(userRepo, attemptRepo, problemRepo, &infrastructure.JWTConfig{
		SecretKey:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "chefforces-test",
	}, noop.NewTracerProvider().Tracer("test"), zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, &domain.UserCreateRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	// The access token round-trips through validation
	gotID, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)

	// A refresh token is not an access token
	_, err = svc.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	loggedIn, loginTokens, err := svc.Login(ctx, "chef@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())
	ctx := context.Background()

	req := &domain.UserCreateRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "supersecret",
	}
	_, _, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &domain.UserCreateRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "chef@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, &domain.UserCreateRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "supersecret",
	})
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	gotID, err := svc.ValidateAccessToken(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotID)

	// An access token cannot be used to refresh
	_, err = svc.RefreshToken(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateAccessTokenRejectsForeignSignature(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())
	other := NewUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo(), &infrastructure.JWTConfig{
		SecretKey:          "different-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "chefforces-test",
	}, noop.NewTracerProvider().Tracer("test"), zap.NewNop())

	_, tokens, err := other.Register(context.Background(), &domain.UserCreateRequest{
		Email:    "mallory@example.com",
		Username: "mallory",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestGetProfileDerivesSolvedCount(t *testing.T) {
	userRepo := newFakeUserRepo()
	attemptRepo := &fakeAttemptRepo{}
	problemA := &domain.Problem{ID: uuid.New(), Title: "Sum of Two Numbers"}
	problemB := &domain.Problem{ID: uuid.New(), Title: "Reverse a String"}
	svc := newUserService(userRepo, attemptRepo, newFakeProblemRepo(problemA, problemB))
	ctx := context.Background()

	user, _, err := svc.Register(ctx, &domain.UserCreateRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "supersecret",
	})
	require.NoError(t, err)

	// Two accepted attempts on the same problem count once
	for _, req := range []*domain.RecordAttemptRequest{
		{ProblemID: problemA.ID, Verdict: "Wrong Answer"},
		{ProblemID: problemA.ID, Verdict: domain.VerdictAccepted},
		{ProblemID: problemA.ID, Verdict: domain.VerdictAccepted},
		{ProblemID: problemB.ID, Verdict: domain.VerdictAccepted},
	} {
		_, err := svc.RecordAttempt(ctx, user.ID, req)
		require.NoError(t, err)
	}

	profile, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SolvedCount)
	assert.Len(t, profile.Submissions, 4)
	assert.Equal(t, "chef", profile.User.Username)
}

func TestRecordAttemptUnknownProblem(t *testing.T) {
	svc := newUserService(newFakeUserRepo(), &fakeAttemptRepo{}, newFakeProblemRepo())

	_, err := svc.RecordAttempt(context.Background(), uuid.New(), &domain.RecordAttemptRequest{
		ProblemID: uuid.New(),
		Verdict:   domain.VerdictAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrProblemNotFound)
}

func TestRecordAttemptDenormalizesTitle(t *testing.T) {
	attemptRepo := &fakeAttemptRepo{}
	problem := &domain.Problem{ID: uuid.New(), Title: "Count Primes"}
	svc := newUserService(newFakeUserRepo(), attemptRepo, newFakeProblemRepo(problem))

	attempt, err := svc.RecordAttempt(context.Background(), uuid.New(), &domain.RecordAttemptRequest{
		ProblemID: problem.ID,
		Verdict:   "Time Limit Exceeded",
	})
	require.NoError(t, err)
	assert.Equal(t, "Count Primes", attempt.ProblemTitle)
	assert.False(t, attempt.Accepted())
}
