package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/infrastructure"
)

// UserService handles authentication and user profile business logic
type UserService struct {
	userRepo    domain.UserRepository
	attemptRepo domain.AttemptRepository
	problemRepo domain.ProblemRepository
	jwtConfig   *infrastructure.JWTConfig
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo domain.UserRepository,
	attemptRepo domain.AttemptRepository,
	problemRepo domain.ProblemRepository,
	jwtConfig *infrastructure.JWTConfig,
	tracer trace.Tracer,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		problemRepo: problemRepo,
		jwtConfig:   jwtConfig,
		tracer:      tracer,
		logger:      logger,
	}
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, req *domain.UserCreateRequest) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	span.SetAttributes(attribute.String("user.email", req.Email))

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, nil, domain.ErrInternalServer
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, tokens, nil
}

// Login authenticates a user and returns tokens
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	span.SetAttributes(attribute.String("user.email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, tokens, nil
}

// RefreshToken generates a new token pair from a refresh token
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.RefreshToken")
	defer span.End()

	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return nil, domain.ErrInvalidToken
	}

	userIDStr, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(user)
}

// GetUserByID retrieves a user by their ID
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUserByID")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", id.String()))
	return s.userRepo.FindByID(ctx, id)
}

// GetAllUsers returns all user profiles
func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetAllUsers")
	defer span.End()

	return s.userRepo.FindAll(ctx)
}

// GetProfile returns a user together with their submission history and the
// solved counter. The counter is derived from the history at read time
// rather than stored, so it cannot drift.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetProfile")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID.String()))

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	solved, err := s.attemptRepo.CountSolved(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		User:        user.ToResponse(),
		Submissions: attempts,
		SolvedCount: solved,
	}, nil
}

// RecordAttempt appends a practice attempt to the user's history. The
// attempt is keyed on problem id; the title is denormalized for display
// only.
func (s *UserService) RecordAttempt(ctx context.Context, userID uuid.UUID, req *domain.RecordAttemptRequest) (*domain.Attempt, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.RecordAttempt")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("problem.id", req.ProblemID.String()),
		attribute.String("verdict", req.Verdict),
	)

	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	attempt := &domain.Attempt{
		UserID:       userID,
		ProblemID:    problem.ID,
		ProblemTitle: problem.Title,
		Verdict:      req.Verdict,
		SubmittedAt:  time.Now(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		s.logger.Error("Failed to record practice attempt", zap.Error(err))
		return nil, err
	}

	return attempt, nil
}

// ValidateAccessToken validates an access token and returns the user ID
func (s *UserService) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.validateToken(tokenString)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "access" {
		return uuid.Nil, domain.ErrInvalidToken
	}

	userIDStr, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, domain.ErrInvalidToken
	}

	return uuid.Parse(userIDStr)
}

// generateTokenPair creates access and refresh tokens for a user
func (s *UserService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.jwtConfig.AccessTokenExpiry)
	refreshExpiry := now.Add(s.jwtConfig.RefreshTokenExpiry)

	accessClaims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   accessExpiry.Unix(),
		"iss":   s.jwtConfig.Issuer,
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  refreshExpiry.Unix(),
		"iss":  s.jwtConfig.Issuer,
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.jwtConfig.SecretKey))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
	}, nil
}

// validateToken validates a JWT token and returns its claims
func (s *UserService) validateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(s.jwtConfig.SecretKey), nil
	})

	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
