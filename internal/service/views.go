package service

import "time"

// Response shapes for the student-facing endpoints. The metadata and take
// views never carry a correctAnswer field; only the review view does.

type QuizDetails struct {
	ID              string     `json:"_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	AttemptsAllowed int        `json:"attemptsAllowed"`
	TimeLimit       int        `json:"timeLimit"`
	Difficulty      string     `json:"difficulty"`
	Category        string     `json:"category"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	Instructions    string     `json:"instructions"`
	QuestionsCount  int        `json:"questionsCount"`
	UserAttempts    int        `json:"userAttempts"`
}

type TakeQuestion struct {
	ID           string   `json:"_id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

type TakeView struct {
	ID              string         `json:"_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Grade           int            `json:"grade"`
	Session         int            `json:"session"`
	Questions       []TakeQuestion `json:"questions"`
	AttemptsAllowed int            `json:"attemptsAllowed"`
	TimeLimit       int            `json:"timeLimit"`
	Difficulty      string         `json:"difficulty"`
	Category        string         `json:"category"`
	DueDate         *time.Time     `json:"dueDate,omitempty"`
	Instructions    string         `json:"instructions"`
}

type SubmitResult struct {
	AttemptID      string `json:"attemptId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
}

type QuestionResult struct {
	ID             string   `json:"_id"`
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	SelectedAnswer *string  `json:"selectedAnswer"`
}

type AttemptReview struct {
	QuizTitle            string           `json:"quizTitle"`
	Score                int              `json:"score"`
	TotalQuestions       int              `json:"totalQuestions"`
	StartedAt            time.Time        `json:"startedAt"`
	CompletedAt          time.Time        `json:"completedAt"`
	TimeTaken            *int             `json:"timeTaken,omitempty"`
	QuestionsWithResults []QuestionResult `json:"questionsWithResults"`
}

type AttemptSummary struct {
	ID             string    `json:"_id"`
	QuizID         string    `json:"quizId"`
	QuizTitle      string    `json:"quizTitle"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}
