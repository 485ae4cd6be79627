package models

import "time"

// AttemptAnswer records the option a student picked for one question.
// SelectedOption is nil when the question was left unanswered.
type AttemptAnswer struct {
	QuestionID     string  `bson:"question_id" json:"questionId"`
	SelectedOption *string `bson:"selected_option" json:"selectedOption"`
}

// QuizAttempt is one student's one completed submission against one quiz.
// Attempts form an append-only ledger: they are never mutated or deleted.
type QuizAttempt struct {
	ID             string          `bson:"_id,omitempty" json:"_id"`
	StudentID      string          `bson:"student_id" json:"studentId"`
	QuizID         string          `bson:"quiz_id" json:"quizId"`
	AttemptNumber  int             `bson:"attempt_number" json:"attemptNumber"`
	Answers        []AttemptAnswer `bson:"answers" json:"answers"`
	Score          int             `bson:"score" json:"score"`
	TotalQuestions int             `bson:"total_questions" json:"totalQuestions"`
	StartedAt      time.Time       `bson:"started_at" json:"startedAt"`
	CompletedAt    time.Time       `bson:"completed_at" json:"completedAt"`
	TimeTaken      *int            `bson:"time_taken,omitempty" json:"timeTaken,omitempty"`
	TimedOut       bool            `bson:"timed_out" json:"timedOut"`
	IsCompleted    bool            `bson:"is_completed" json:"isCompleted"`
}
