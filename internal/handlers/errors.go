package handlers

import (
	"errors"
	"log"
	"net/http"

	"lms-quiz-service/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError is the single place service errors become HTTP responses.
// Authorization-adjacent failures stay deliberately vague: a wrong-grade
// quiz, another student's attempt and a missing document all read alike
// to the client.
func respondError(c *gin.Context, err error) {
	var validation models.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, models.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identifier"})
	case errors.Is(err, models.ErrInvalidSubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrProfileMissing):
		// Data-integrity condition: the token was valid but the account
		// record is gone. Logged where it is detected; generic here.
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this quiz"})
	case errors.Is(err, models.ErrAttemptsExhausted):
		c.JSON(http.StatusForbidden, gin.H{"error": "No attempts remaining for this quiz"})
	default:
		log.Printf("unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
