package service

import (
	"context"
	"time"

	"lms-quiz-service/internal/cache"
	"lms-quiz-service/internal/models"
)

// QuizService is the admin authoring surface: full CRUD with the answer
// key visible. Editing a quiz never touches previously recorded attempts.
type QuizService struct {
	Quizzes QuizStore
	Cache   *cache.QuizCache
}

func NewQuizService(quizzes QuizStore, quizCache *cache.QuizCache) *QuizService {
	return &QuizService{Quizzes: quizzes, Cache: quizCache}
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	return s.Quizzes.FindAll(ctx)
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	return s.Quizzes.FindByID(ctx, id)
}

func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz, createdBy string) error {
	quiz.ApplyDefaults()
	quiz.EnsureQuestionIDs()
	if err := quiz.Validate(); err != nil {
		return err
	}
	quiz.CreatedBy = createdBy
	quiz.CreatedAt = time.Now().UTC()
	return s.Quizzes.Create(ctx, quiz)
}

// UpdateQuiz replaces the whole document. Creation metadata is preserved
// from the stored quiz, everything else comes from the request.
func (s *QuizService) UpdateQuiz(ctx context.Context, id string, quiz *models.Quiz) error {
	existing, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	quiz.ApplyDefaults()
	quiz.EnsureQuestionIDs()
	if err := quiz.Validate(); err != nil {
		return err
	}
	quiz.CreatedBy = existing.CreatedBy
	quiz.CreatedAt = existing.CreatedAt
	if err := s.Quizzes.Replace(ctx, id, quiz); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

// DeleteQuiz removes the document outright. Attempts referencing it become
// orphaned and are tolerated by list readers.
func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.Quizzes.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}
