package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

const (
	DefaultAttemptsAllowed = 1
	DefaultTimeLimit       = 60
	DefaultCategory        = "General"
)

type Question struct {
	ID            string   `bson:"_id" json:"_id"`
	QuestionText  string   `bson:"question_text" json:"questionText"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer string   `bson:"correct_answer" json:"correctAnswer"`
}

type Quiz struct {
	ID              string     `bson:"_id,omitempty" json:"_id"`
	Title           string     `bson:"title" json:"title"`
	Description     string     `bson:"description" json:"description"`
	Grade           int        `bson:"grade" json:"grade"`
	Session         int        `bson:"session" json:"session"`
	Questions       []Question `bson:"questions" json:"questions"`
	AttemptsAllowed int        `bson:"attempts_allowed" json:"attemptsAllowed"`
	TimeLimit       int        `bson:"time_limit" json:"timeLimit"`
	Difficulty      string     `bson:"difficulty" json:"difficulty"`
	Category        string     `bson:"category" json:"category"`
	DueDate         *time.Time `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Instructions    string     `bson:"instructions" json:"instructions"`
	CreatedBy       string     `bson:"created_by" json:"createdBy"`
	CreatedAt       time.Time  `bson:"created_at" json:"createdAt"`
}

// ApplyDefaults fills unset authoring parameters before validation.
func (q *Quiz) ApplyDefaults() {
	if q.AttemptsAllowed == 0 {
		q.AttemptsAllowed = DefaultAttemptsAllowed
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = DefaultTimeLimit
	}
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	if q.Category == "" {
		q.Category = DefaultCategory
	}
}

// EnsureQuestionIDs assigns a fresh ObjectID hex to every question that
// arrived without one, so answer matching can rely on stable ids even
// after questions are reordered or removed on edit.
func (q *Quiz) EnsureQuestionIDs() {
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = primitive.NewObjectID().Hex()
		}
	}
}

// Validate enforces the authoring constraints; a failing quiz is never
// persisted.
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return ValidationError("title is required")
	}
	if q.Grade < 1 {
		return ValidationError("grade must be a positive integer")
	}
	if q.Session < 1 {
		return ValidationError("session must be a positive integer")
	}
	if len(q.Questions) == 0 {
		return ValidationError("at least one question is required")
	}
	if q.AttemptsAllowed < 1 {
		return ValidationError("attemptsAllowed must be at least 1")
	}
	if q.TimeLimit < 1 {
		return ValidationError("timeLimit must be at least 1 minute")
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return ValidationError("difficulty must be Easy, Medium or Hard")
	}
	for i := range q.Questions {
		if err := q.Questions[i].validate(); err != nil {
			return ValidationError(fmt.Sprintf("question %d: %s", i+1, err))
		}
	}
	return nil
}

func (question *Question) validate() error {
	if question.QuestionText == "" {
		return ValidationError("question text is required")
	}
	if len(question.Options) < 2 {
		return ValidationError("at least two options are required")
	}
	seen := make(map[string]bool, len(question.Options))
	for _, opt := range question.Options {
		if seen[opt] {
			return ValidationError("options must be distinct")
		}
		seen[opt] = true
	}
	if question.CorrectAnswer == "" {
		return ValidationError("correctAnswer is required")
	}
	if !seen[question.CorrectAnswer] {
		return ValidationError("correctAnswer must be one of the options")
	}
	return nil
}
