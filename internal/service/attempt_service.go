package service

import (
	"context"
	"errors"
	"log"
	"time"

	"lms-quiz-service/internal/cache"
	"lms-quiz-service/internal/models"
)

// submitRetries bounds the recount-and-retry loop when a concurrent
// submission claims the same attempt number (unique-index conflict).
const submitRetries = 3

type SubmittedAnswer struct {
	QuestionID     string  `json:"questionId"`
	SelectedOption *string `json:"selectedOption"`
}

type Submission struct {
	QuizID      string            `json:"quizId"`
	Answers     []SubmittedAnswer `json:"answers"`
	StartedAt   *time.Time        `json:"startedAt"`
	CompletedAt *time.Time        `json:"completedAt"`
	TimeTaken   *int              `json:"timeTaken,omitempty"`
	TimedOut    bool              `json:"timedOut"`
}

// AttemptService owns the quiz-attempt flow: access checks, answer
// redaction, scoring, the attempt ledger and review assembly.
type AttemptService struct {
	Quizzes  QuizStore
	Attempts AttemptStore
	Users    UserStore
	Cache    *cache.QuizCache
}

func NewAttemptService(quizzes QuizStore, attempts AttemptStore, users UserStore, quizCache *cache.QuizCache) *AttemptService {
	return &AttemptService{
		Quizzes:  quizzes,
		Attempts: attempts,
		Users:    users,
		Cache:    quizCache,
	}
}

// checkAccess loads the quiz and the caller's account record and enforces
// the grade gate. A grade mismatch returns the generic ErrForbidden with
// no quiz content attached.
func (s *AttemptService) checkAccess(ctx context.Context, studentID, quizID string) (*models.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.FindByID(ctx, studentID)
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidID) {
		log.Printf("quiz access: account record missing for authenticated user %s", studentID)
		return nil, models.ErrProfileMissing
	}
	if err != nil {
		return nil, err
	}
	if user.Grade != quiz.Grade {
		return nil, models.ErrForbidden
	}
	return quiz, nil
}

// Details returns the metadata view: access parameters and the caller's
// completed-attempt count, never option texts or answers.
func (s *AttemptService) Details(ctx context.Context, studentID, quizID string) (*QuizDetails, error) {
	quiz, err := s.checkAccess(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}
	count, err := s.Attempts.CountCompleted(ctx, studentID, quiz.ID)
	if err != nil {
		return nil, err
	}
	return &QuizDetails{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		AttemptsAllowed: quiz.AttemptsAllowed,
		TimeLimit:       quiz.TimeLimit,
		Difficulty:      quiz.Difficulty,
		Category:        quiz.Category,
		DueDate:         quiz.DueDate,
		Instructions:    quiz.Instructions,
		QuestionsCount:  len(quiz.Questions),
		UserAttempts:    int(count),
	}, nil
}

// Take returns the full question set with every correctAnswer stripped,
// in stored order. The redacted view is quiz-scoped, so it is cached
// after the per-caller access check has passed.
func (s *AttemptService) Take(ctx context.Context, studentID, quizID string) (*TakeView, error) {
	quiz, err := s.checkAccess(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}
	var view TakeView
	if s.Cache.GetTakeView(ctx, quiz.ID, &view) {
		return &view, nil
	}
	view = TakeView{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		Grade:           quiz.Grade,
		Session:         quiz.Session,
		Questions:       redactQuestions(quiz.Questions),
		AttemptsAllowed: quiz.AttemptsAllowed,
		TimeLimit:       quiz.TimeLimit,
		Difficulty:      quiz.Difficulty,
		Category:        quiz.Category,
		DueDate:         quiz.DueDate,
		Instructions:    quiz.Instructions,
	}
	s.Cache.SetTakeView(ctx, quiz.ID, &view)
	return &view, nil
}

func redactQuestions(questions []models.Question) []TakeQuestion {
	redacted := make([]TakeQuestion, len(questions))
	for i, q := range questions {
		redacted[i] = TakeQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
		}
	}
	return redacted
}

// Submit scores a submission against the stored answer key and appends one
// attempt to the ledger. The attempt number is recomputed server-side; a
// unique-index conflict from a concurrent submission triggers a recount.
func (s *AttemptService) Submit(ctx context.Context, studentID, quizID string, sub *Submission) (*SubmitResult, error) {
	if sub.QuizID == "" || len(sub.Answers) == 0 || sub.StartedAt == nil || sub.CompletedAt == nil {
		return nil, models.ErrInvalidSubmission
	}
	if sub.QuizID != quizID {
		return nil, models.ErrInvalidSubmission
	}
	if sub.CompletedAt.Before(*sub.StartedAt) {
		return nil, models.ErrInvalidSubmission
	}

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	score, answers := scoreSubmission(quiz.Questions, sub.Answers)

	for try := 0; try < submitRetries; try++ {
		count, err := s.Attempts.CountCompleted(ctx, studentID, quiz.ID)
		if err != nil {
			return nil, err
		}
		attemptNumber := int(count) + 1
		if attemptNumber > quiz.AttemptsAllowed {
			return nil, models.ErrAttemptsExhausted
		}

		attempt := &models.QuizAttempt{
			StudentID:      studentID,
			QuizID:         quiz.ID,
			AttemptNumber:  attemptNumber,
			Answers:        answers,
			Score:          score,
			TotalQuestions: len(quiz.Questions),
			StartedAt:      *sub.StartedAt,
			CompletedAt:    *sub.CompletedAt,
			TimeTaken:      sub.TimeTaken,
			TimedOut:       sub.TimedOut,
			IsCompleted:    true,
		}
		err = s.Attempts.Create(ctx, attempt)
		if errors.Is(err, models.ErrDuplicateAttempt) {
			continue // another submission took this number, recount
		}
		if err != nil {
			return nil, err
		}
		return &SubmitResult{
			AttemptID:      attempt.ID,
			Score:          score,
			TotalQuestions: len(quiz.Questions),
		}, nil
	}
	return nil, models.ErrDuplicateAttempt
}

// scoreSubmission walks the quiz's questions in stored order and matches
// submitted answers by question id. Unanswered questions are recorded with
// a nil selection; answers for unknown question ids are dropped.
func scoreSubmission(questions []models.Question, submitted []SubmittedAnswer) (int, []models.AttemptAnswer) {
	byQuestion := make(map[string]*string, len(submitted))
	for _, a := range submitted {
		if _, dup := byQuestion[a.QuestionID]; !dup {
			byQuestion[a.QuestionID] = a.SelectedOption
		}
	}

	score := 0
	answers := make([]models.AttemptAnswer, len(questions))
	for i, q := range questions {
		selected, ok := byQuestion[q.ID]
		if !ok {
			answers[i] = models.AttemptAnswer{QuestionID: q.ID}
			continue
		}
		answers[i] = models.AttemptAnswer{QuestionID: q.ID, SelectedOption: selected}
		if selected != nil && *selected == q.CorrectAnswer {
			score++
		}
	}
	return score, answers
}

// Review assembles one of the caller's own attempts with the full answer
// key. Ownership and quiz membership are enforced by the attempt lookup
// itself; any mismatch surfaces as not-found.
func (s *AttemptService) Review(ctx context.Context, studentID, quizID, attemptID string) (*AttemptReview, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.Attempts.FindForStudent(ctx, attemptID, studentID, quizID)
	if err != nil {
		return nil, err
	}

	selectedByQuestion := make(map[string]*string, len(attempt.Answers))
	for _, a := range attempt.Answers {
		selectedByQuestion[a.QuestionID] = a.SelectedOption
	}

	results := make([]QuestionResult, len(quiz.Questions))
	for i, q := range quiz.Questions {
		results[i] = QuestionResult{
			ID:             q.ID,
			QuestionText:   q.QuestionText,
			Options:        q.Options,
			CorrectAnswer:  q.CorrectAnswer,
			SelectedAnswer: selectedByQuestion[q.ID],
		}
	}

	return &AttemptReview{
		QuizTitle:            quiz.Title,
		Score:                attempt.Score,
		TotalQuestions:       attempt.TotalQuestions,
		StartedAt:            attempt.StartedAt,
		CompletedAt:          attempt.CompletedAt,
		TimeTaken:            attempt.TimeTaken,
		QuestionsWithResults: results,
	}, nil
}

// ListMyAttempts returns the caller's completed attempts newest first.
// Attempts whose quiz no longer resolves are omitted rather than erroring;
// a deleted quiz orphans its attempts by design.
func (s *AttemptService) ListMyAttempts(ctx context.Context, studentID string) ([]AttemptSummary, error) {
	attempts, err := s.Attempts.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]*string)
	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		title, seen := titles[a.QuizID]
		if !seen {
			quiz, err := s.Quizzes.FindByID(ctx, a.QuizID)
			switch {
			case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidID):
				titles[a.QuizID] = nil
			case err != nil:
				return nil, err
			default:
				titles[a.QuizID] = &quiz.Title
			}
			title = titles[a.QuizID]
		}
		if title == nil {
			continue // orphaned attempt, quiz was deleted
		}
		summaries = append(summaries, AttemptSummary{
			ID:             a.ID,
			QuizID:         a.QuizID,
			QuizTitle:      *title,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			CompletedAt:    a.CompletedAt,
		})
	}
	return summaries, nil
}
