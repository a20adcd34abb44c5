package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefforces-tocode/backend/internal/domain"
	"github.com/chefforces-tocode/backend/internal/judge"
)

// JudgeHandler proxies single practice runs to the judge service
type JudgeHandler struct {
	runner judge.Runner
}

// NewJudgeHandler creates a new judge proxy handler
func NewJudgeHandler(runner judge.Runner) *JudgeHandler {
	return &JudgeHandler{
		runner: runner,
	}
}

// SubmitRequest represents one practice run against a single test case
type SubmitRequest struct {
	SourceCode     string `json:"source_code" binding:"required"`
	LanguageID     int    `json:"language_id" binding:"required"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Submit judges one program run against one test case
// POST /api/submit
func (h *JudgeHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.runner.Execute(c.Request.Context(), judge.Run{
		SourceCode:     req.SourceCode,
		LanguageID:     req.LanguageID,
		Stdin:          req.Stdin,
		ExpectedOutput: req.ExpectedOutput,
	})
	if err != nil {
		if errors.Is(err, domain.ErrJudgeUnavailable) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to submit code to the judge",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to judge submission",
		})
		return
	}

	if result.Accepted() {
		c.JSON(http.StatusOK, gin.H{
			"verdict": result.Verdict,
			"output":  result.Stdout,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"verdict": result.Verdict,
		"output":  result.Stdout,
		"error":   result.Diagnostic,
	})
}
