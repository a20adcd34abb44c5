package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/middleware"
	"github.com/chefforces-tocode/backend/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetUsers returns all user profiles
// GET /api/users
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve users",
		})
		return
	}

	responses := make([]domain.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"users": responses,
	})
}

// GetCurrentUser returns the currently authenticated user
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve user",
		})
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// GetProfile returns a user's profile with submission history and the
// derived solved counter
// GET /api/users/:userId
func (h *UserHandler) GetProfile(c *gin.Context) {
	userIDStr := c.Param("userId")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve profile",
			})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RecordAttempt appends a practice attempt to a user's submission history.
// Users may only write to their own history.
// PUT /api/users/:userId
func (h *UserHandler) RecordAttempt(c *gin.Context) {
	authedID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	userIDStr := c.Param("userId")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	if userID != authedID {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "You can only record attempts for yourself",
		})
		return
	}

	var req domain.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	attempt, err := h.userService.RecordAttempt(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProblemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record attempt",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"attempt": attempt,
	})
}
