package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/service"
)

// ProblemHandler handles problem-related HTTP requests
type ProblemHandler struct {
	problemService *service.ProblemService
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(problemService *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{
		problemService: problemService,
	}
}

// CreateProblem creates a new problem from the authoring form
// POST /api/problems
func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var req domain.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	problem, err := h.problemService.CreateProblem(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDifficulty),
			errors.Is(err, domain.ErrNoTestCases),
			errors.Is(err, domain.ErrUnevenTestCases):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		case errors.Is(err, domain.ErrProblemSlugTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error": "A problem with this title already exists",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create problem",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, problem.ToResponse())
}

// GetProblems returns all problems
// GET /api/problems
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	problems, err := h.problemService.GetAllProblems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve problems",
		})
		return
	}

	responses := make([]domain.ProblemResponse, len(problems))
	for i, problem := range problems {
		responses[i] = problem.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"problems": responses,
		"count":    len(responses),
	})
}

// GetProblem returns a specific problem by ID
// GET /api/problems/:id
func (h *ProblemHandler) GetProblem(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid problem ID",
		})
		return
	}

	problem, err := h.problemService.GetProblemByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProblemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problem",
			})
		}
		return
	}

	c.JSON(http.StatusOK, problem.ToResponse())
}
