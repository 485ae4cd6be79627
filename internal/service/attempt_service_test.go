package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"lms-quiz-service/internal/models"
)

type fakeQuizStore struct {
	quizzes map[string]*models.Quiz
}

func (f *fakeQuizStore) FindAll(ctx context.Context) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range f.quizzes {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeQuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if q, ok := f.quizzes[id]; ok {
		return q, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeQuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = fmt.Sprintf("quiz-%d", len(f.quizzes)+1)
	}
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizStore) Replace(ctx context.Context, id string, quiz *models.Quiz) error {
	if _, ok := f.quizzes[id]; !ok {
		return models.ErrNotFound
	}
	quiz.ID = id
	f.quizzes[id] = quiz
	return nil
}

func (f *fakeQuizStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.quizzes[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.quizzes, id)
	return nil
}

type fakeAttemptStore struct {
	attempts []*models.QuizAttempt
	// duplicateCreates makes the next n Create calls fail with a
	// unique-index conflict, simulating a concurrent submission.
	duplicateCreates int
}

func (f *fakeAttemptStore) CountCompleted(ctx context.Context, studentID, quizID string) (int64, error) {
	var n int64
	for _, a := range f.attempts {
		if a.StudentID == studentID && a.QuizID == quizID && a.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if f.duplicateCreates > 0 {
		f.duplicateCreates--
		return models.ErrDuplicateAttempt
	}
	for _, a := range f.attempts {
		if a.StudentID == attempt.StudentID && a.QuizID == attempt.QuizID && a.AttemptNumber == attempt.AttemptNumber {
			return models.ErrDuplicateAttempt
		}
	}
	attempt.ID = fmt.Sprintf("attempt-%d", len(f.attempts)+1)
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeAttemptStore) FindForStudent(ctx context.Context, attemptID, studentID, quizID string) (*models.QuizAttempt, error) {
	for _, a := range f.attempts {
		if a.ID == attemptID && a.StudentID == studentID && a.QuizID == quizID {
			return a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAttemptStore) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.StudentID == studentID && a.IsCompleted {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func strPtr(s string) *string { return &s }

func capitalsQuiz() *models.Quiz {
	return &models.Quiz{
		ID:      "quiz-1",
		Title:   "Capitals and Numbers",
		Grade:   5,
		Session: 1,
		Questions: []models.Question{
			{ID: "q1", QuestionText: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectAnswer: "Paris"},
			{ID: "q2", QuestionText: "The answer to everything?", Options: []string{"41", "42"}, CorrectAnswer: "42"},
		},
		AttemptsAllowed: 1,
		TimeLimit:       30,
		Difficulty:      models.DifficultyEasy,
		Category:        "General",
	}
}

func newTestService(quizzes ...*models.Quiz) (*AttemptService, *fakeAttemptStore) {
	quizStore := &fakeQuizStore{quizzes: map[string]*models.Quiz{}}
	for _, q := range quizzes {
		quizStore.quizzes[q.ID] = q
	}
	attemptStore := &fakeAttemptStore{}
	userStore := &fakeUserStore{users: map[string]*models.User{
		"student-1": {ID: "student-1", Role: models.RoleStudent, Grade: 5},
		"student-2": {ID: "student-2", Role: models.RoleStudent, Grade: 5},
		"student-6": {ID: "student-6", Role: models.RoleStudent, Grade: 6},
	}}
	return NewAttemptService(quizStore, attemptStore, userStore, nil), attemptStore
}

func submission(answers ...SubmittedAnswer) *Submission {
	started := time.Now().Add(-10 * time.Minute)
	completed := time.Now()
	return &Submission{
		QuizID:      "quiz-1",
		Answers:     answers,
		StartedAt:   &started,
		CompletedAt: &completed,
	}
}

func TestDetailsReportsCountsWithoutQuestions(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())
	ctx := context.Background()

	details, err := svc.Details(ctx, "student-1", "quiz-1")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if details.QuestionsCount != 2 {
		t.Errorf("expected 2 questions, got %d", details.QuestionsCount)
	}
	if details.UserAttempts != 0 {
		t.Errorf("expected 0 attempts, got %d", details.UserAttempts)
	}

	if _, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
	)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	details, err = svc.Details(ctx, "student-1", "quiz-1")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if details.UserAttempts != 1 {
		t.Errorf("expected 1 attempt after submission, got %d", details.UserAttempts)
	}
}

func TestGradeMismatchIsForbidden(t *testing.T) {
	quiz := capitalsQuiz()
	quiz.Grade = 6
	svc, _ := newTestService(quiz)

	for _, call := range []func() error{
		func() error { _, err := svc.Details(context.Background(), "student-1", "quiz-1"); return err },
		func() error { _, err := svc.Take(context.Background(), "student-1", "quiz-1"); return err },
	} {
		if err := call(); !errors.Is(err, models.ErrForbidden) {
			t.Errorf("expected ErrForbidden for grade mismatch, got %v", err)
		}
	}
}

func TestMissingProfileIsDetected(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())

	_, err := svc.Details(context.Background(), "student-ghost", "quiz-1")
	if !errors.Is(err, models.ErrProfileMissing) {
		t.Errorf("expected ErrProfileMissing, got %v", err)
	}
}

func TestTakeViewStripsCorrectAnswers(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())

	view, err := svc.Take(context.Background(), "student-1", "quiz-1")
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(view.Questions))
	}
	if view.Questions[0].ID != "q1" || view.Questions[1].ID != "q2" {
		t.Errorf("expected stored question order, got %s then %s", view.Questions[0].ID, view.Questions[1].ID)
	}

	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(raw), "correctAnswer") {
		t.Errorf("take view must not expose correct answers: %s", raw)
	}
}

func TestSubmitScoresAndRecordsAttempt(t *testing.T) {
	svc, attempts := newTestService(capitalsQuiz())

	result, err := svc.Submit(context.Background(), "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
		SubmittedAnswer{QuestionID: "q2", SelectedOption: strPtr("41")},
	))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("expected score 1, got %d", result.Score)
	}
	if result.TotalQuestions != 2 {
		t.Errorf("expected totalQuestions 2, got %d", result.TotalQuestions)
	}
	if result.AttemptID == "" {
		t.Error("expected attempt id in result")
	}
	if len(attempts.attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(attempts.attempts))
	}
	if attempts.attempts[0].AttemptNumber != 1 {
		t.Errorf("expected attemptNumber 1, got %d", attempts.attempts[0].AttemptNumber)
	}
	if !attempts.attempts[0].IsCompleted {
		t.Error("expected recorded attempt to be completed")
	}
}

func TestSubmitBeyondAttemptsAllowed(t *testing.T) {
	svc, attempts := newTestService(capitalsQuiz())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
	)); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Lyon")},
	))
	if !errors.Is(err, models.ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if len(attempts.attempts) != 1 {
		t.Errorf("ledger must be unchanged after rejection, got %d attempts", len(attempts.attempts))
	}
}

func TestSubmitSequentialAttemptNumbers(t *testing.T) {
	quiz := capitalsQuiz()
	quiz.AttemptsAllowed = 3
	svc, attempts := newTestService(quiz)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		if _, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
			SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
		)); err != nil {
			t.Fatalf("submit %d failed: %v", want, err)
		}
		if got := attempts.attempts[want-1].AttemptNumber; got != want {
			t.Errorf("expected attemptNumber %d, got %d", want, got)
		}
	}
}

func TestSubmitDropsStrayAndRecordsUnanswered(t *testing.T) {
	svc, attempts := newTestService(capitalsQuiz())

	result, err := svc.Submit(context.Background(), "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
		SubmittedAnswer{QuestionID: "q-unknown", SelectedOption: strPtr("Paris")},
	))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("stray answers must not score, got %d", result.Score)
	}

	recorded := attempts.attempts[0].Answers
	if len(recorded) != 2 {
		t.Fatalf("expected one recorded answer per quiz question, got %d", len(recorded))
	}
	if recorded[1].QuestionID != "q2" || recorded[1].SelectedOption != nil {
		t.Errorf("unanswered question must be recorded with nil selection, got %+v", recorded[1])
	}
	for _, a := range recorded {
		if a.QuestionID == "q-unknown" {
			t.Error("stray answer must be dropped, found it in the ledger")
		}
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())
	ctx := context.Background()
	now := time.Now()
	earlier := now.Add(-time.Hour)
	answers := []SubmittedAnswer{{QuestionID: "q1", SelectedOption: strPtr("Paris")}}

	testCases := []struct {
		name string
		sub  *Submission
	}{
		{"missing quiz id", &Submission{Answers: answers, StartedAt: &earlier, CompletedAt: &now}},
		{"mismatched quiz id", &Submission{QuizID: "quiz-2", Answers: answers, StartedAt: &earlier, CompletedAt: &now}},
		{"empty answers", &Submission{QuizID: "quiz-1", StartedAt: &earlier, CompletedAt: &now}},
		{"missing startedAt", &Submission{QuizID: "quiz-1", Answers: answers, CompletedAt: &now}},
		{"missing completedAt", &Submission{QuizID: "quiz-1", Answers: answers, StartedAt: &earlier}},
		{"completed before started", &Submission{QuizID: "quiz-1", Answers: answers, StartedAt: &now, CompletedAt: &earlier}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, "student-1", "quiz-1", tc.sub); !errors.Is(err, models.ErrInvalidSubmission) {
				t.Errorf("expected ErrInvalidSubmission, got %v", err)
			}
		})
	}
}

func TestSubmitRetriesOnDuplicateAttemptNumber(t *testing.T) {
	quiz := capitalsQuiz()
	quiz.AttemptsAllowed = 5
	svc, attempts := newTestService(quiz)
	attempts.duplicateCreates = 2

	result, err := svc.Submit(context.Background(), "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
	))
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.Score != 1 {
		t.Errorf("expected score 1, got %d", result.Score)
	}
	if len(attempts.attempts) != 1 {
		t.Errorf("expected exactly 1 recorded attempt, got %d", len(attempts.attempts))
	}
}

func TestReviewRequiresOwnershipAndQuizMatch(t *testing.T) {
	quizA := capitalsQuiz()
	quizB := capitalsQuiz()
	quizB.ID = "quiz-2"
	svc, _ := newTestService(quizA, quizB)
	ctx := context.Background()

	result, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
	))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Review(ctx, "student-1", "quiz-1", result.AttemptID); err != nil {
		t.Errorf("owner review failed: %v", err)
	}
	if _, err := svc.Review(ctx, "student-2", "quiz-1", result.AttemptID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("another student's review must be ErrNotFound, got %v", err)
	}
	sub2 := submission(SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")})
	sub2.QuizID = "quiz-2"
	if _, err := svc.Submit(ctx, "student-1", "quiz-2", sub2); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if _, err := svc.Review(ctx, "student-1", "quiz-2", result.AttemptID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("review against the wrong quiz must be ErrNotFound, got %v", err)
	}
}

func TestReviewAssemblesAnswerKey(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())
	ctx := context.Background()

	result, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q2", SelectedOption: strPtr("41")},
	))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	review, err := svc.Review(ctx, "student-1", "quiz-1", result.AttemptID)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.QuizTitle != "Capitals and Numbers" {
		t.Errorf("unexpected quiz title %q", review.QuizTitle)
	}
	if review.Score != 0 {
		t.Errorf("expected score 0, got %d", review.Score)
	}
	if len(review.QuestionsWithResults) != 2 {
		t.Fatalf("expected 2 question results, got %d", len(review.QuestionsWithResults))
	}

	first := review.QuestionsWithResults[0]
	if first.ID != "q1" || first.CorrectAnswer != "Paris" || first.SelectedAnswer != nil {
		t.Errorf("unexpected first result: %+v", first)
	}
	second := review.QuestionsWithResults[1]
	if second.CorrectAnswer != "42" || second.SelectedAnswer == nil || *second.SelectedAnswer != "41" {
		t.Errorf("unexpected second result: %+v", second)
	}
}

func TestListMyAttemptsOmitsOrphans(t *testing.T) {
	quizA := capitalsQuiz()
	quizB := capitalsQuiz()
	quizB.ID = "quiz-2"
	quizB.Title = "Doomed Quiz"
	svc, _ := newTestService(quizA, quizB)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "student-1", "quiz-1", submission(
		SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")},
	)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	sub2 := submission(SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")})
	sub2.QuizID = "quiz-2"
	later := time.Now().Add(time.Hour)
	sub2.CompletedAt = &later
	if _, err := svc.Submit(ctx, "student-1", "quiz-2", sub2); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	summaries, err := svc.ListMyAttempts(ctx, "student-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].QuizTitle != "Doomed Quiz" {
		t.Errorf("expected newest attempt first, got %q", summaries[0].QuizTitle)
	}

	// Delete quiz-2; its attempt becomes an orphan and drops from the list.
	if err := svc.Quizzes.Delete(ctx, "quiz-2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	summaries, err = svc.ListMyAttempts(ctx, "student-1")
	if err != nil {
		t.Fatalf("list after delete failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected orphaned attempt to be omitted, got %d summaries", len(summaries))
	}
	if summaries[0].QuizID != "quiz-1" {
		t.Errorf("expected surviving attempt for quiz-1, got %q", summaries[0].QuizID)
	}
}

func TestSubmitMissingQuiz(t *testing.T) {
	svc, _ := newTestService(capitalsQuiz())
	sub := submission(SubmittedAnswer{QuestionID: "q1", SelectedOption: strPtr("Paris")})
	sub.QuizID = "quiz-gone"

	_, err := svc.Submit(context.Background(), "student-1", "quiz-gone", sub)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
