package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/middleware"
	"github.com/chefforces-tocode/backend/internal/service"
)

// ContestHandler handles contest-related HTTP requests
type ContestHandler struct {
	contestService *service.ContestService
}

// NewContestHandler creates a new contest handler
func NewContestHandler(contestService *service.ContestService) *ContestHandler {
	return &ContestHandler{
		contestService: contestService,
	}
}

// CreateContest creates a new contest
// POST /api/contests
func (h *ContestHandler) CreateContest(c *gin.Context) {
	if _, ok := middleware.RequireUser(c); !ok {
		return
	}

	var req domain.CreateContestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	contest, err := h.contestService.CreateContest(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidContestTimes):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Contest start time must precede end time",
			})
		case errors.Is(err, domain.ErrProblemNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "One or more problems do not exist",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create contest",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, contest.ToResponse(time.Now()))
}

// GetContests returns all contests
// GET /api/contests
func (h *ContestHandler) GetContests(c *gin.Context) {
	contests, err := h.contestService.GetAllContests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve contests",
		})
		return
	}

	now := time.Now()
	responses := make([]domain.ContestResponse, len(contests))
	for i, contest := range contests {
		responses[i] = contest.ToResponse(now)
	}

	c.JSON(http.StatusOK, gin.H{
		"contests": responses,
	})
}

// GetContest returns a specific contest by ID
// GET /api/contests/:id
func (h *ContestHandler) GetContest(c *gin.Context) {
	contestIDStr := c.Param("id")
	contestID, err := uuid.Parse(contestIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid contest ID",
		})
		return
	}

	contest, err := h.contestService.GetContestByID(c.Request.Context(), contestID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Contest not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve contest",
			})
		}
		return
	}

	c.JSON(http.StatusOK, contest.ToResponse(time.Now()))
}

// Register registers the authenticated user for a contest. Registering
// twice succeeds without changing anything.
// POST /api/contests/register
func (h *ContestHandler) Register(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing contest_id",
		})
		return
	}

	if err := h.contestService.Register(c.Request.Context(), req.ContestID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrContestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Contest not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to register for contest",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// Submit judges the authenticated user's code against a contest problem
// POST /api/contests/submit
func (h *ContestHandler) Submit(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req domain.ContestSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	outcome, err := h.contestService.SubmitToContest(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Contest not found",
			})
		case errors.Is(err, domain.ErrProblemNotFound), errors.Is(err, domain.ErrProblemNotInContest):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found in this contest",
			})
		case errors.Is(err, domain.ErrContestNotRunning):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Contest is not running",
			})
		case errors.Is(err, domain.ErrJudgeUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit code to the judge",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to judge submission",
			})
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Leaderboard returns the standings for a contest
// GET /api/leaderboard/:contestId
func (h *ContestHandler) Leaderboard(c *gin.Context) {
	contestIDStr := c.Param("contestId")
	contestID, err := uuid.Parse(contestIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid contest ID",
		})
		return
	}

	rows, err := h.contestService.Leaderboard(c.Request.Context(), contestID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContestNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Contest not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to compute leaderboard",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": rows,
	})
}
