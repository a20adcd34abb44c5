package domain

import "errors"

// Domain errors - these are business logic errors that should be translated
// to appropriate HTTP status codes by the handler layer

var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Problem errors
	ErrProblemNotFound    = errors.New("problem not found")
	ErrInvalidDifficulty  = errors.New("invalid difficulty level")
	ErrUnevenTestCases    = errors.New("test cases must come in input/output pairs")
	ErrNoTestCases        = errors.New("problem needs at least one test case")
	ErrProblemSlugTaken   = errors.New("a problem with this title already exists")

	// Contest errors
	ErrContestNotFound     = errors.New("contest not found")
	ErrContestNotRunning   = errors.New("contest is not running")
	ErrInvalidContestTimes = errors.New("contest start time must precede end time")
	ErrProblemNotInContest = errors.New("problem not found in this contest")

	// Judge errors
	ErrJudgeUnavailable = errors.New("judge service unavailable")

	// General errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)
