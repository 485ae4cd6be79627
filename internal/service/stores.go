package service

import (
	"context"

	"lms-quiz-service/internal/models"
)

// Narrow store contracts the services depend on; the Mongo repositories
// satisfy them, and tests swap in in-memory fakes.

type QuizStore interface {
	FindAll(ctx context.Context) ([]models.Quiz, error)
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Replace(ctx context.Context, id string, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error
}

type AttemptStore interface {
	CountCompleted(ctx context.Context, studentID, quizID string) (int64, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	FindForStudent(ctx context.Context, attemptID, studentID, quizID string) (*models.QuizAttempt, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}
