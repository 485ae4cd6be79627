package handlers

import (
	"net/http"

	"lms-quiz-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// GetQuizDetails returns the metadata view: access parameters, question
// count and the caller's attempt count. No options, no answers.
func (h *AttemptHandler) GetQuizDetails(c *gin.Context) {
	identity := CurrentIdentity(c)
	details, err := h.Service.Details(c.Request.Context(), identity.UserID, c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": details})
}

// TakeQuiz returns the question set with correct answers stripped.
func (h *AttemptHandler) TakeQuiz(c *gin.Context) {
	identity := CurrentIdentity(c)
	view, err := h.Service.Take(c.Request.Context(), identity.UserID, c.Param("quizId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": view})
}

// SubmitQuiz scores the submission and records one attempt.
func (h *AttemptHandler) SubmitQuiz(c *gin.Context) {
	identity := CurrentIdentity(c)
	var sub service.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission"})
		return
	}
	result, err := h.Service.Submit(c.Request.Context(), identity.UserID, c.Param("quizId"), &sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"msg":    "Quiz submitted successfully",
		"result": result,
	})
}

// GetAttemptResults returns the full review of one of the caller's own
// attempts, answer key included.
func (h *AttemptHandler) GetAttemptResults(c *gin.Context) {
	identity := CurrentIdentity(c)
	review, err := h.Service.Review(c.Request.Context(), identity.UserID, c.Param("quizId"), c.Param("attemptId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// GetMyAttempts lists the caller's completed attempts, newest first.
func (h *AttemptHandler) GetMyAttempts(c *gin.Context) {
	identity := CurrentIdentity(c)
	attempts, err := h.Service.ListMyAttempts(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}
