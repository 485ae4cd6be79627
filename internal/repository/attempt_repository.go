package repository

import (
	"context"
	"errors"

	"lms-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("quiz_attempts")}
}

// EnsureIndexes creates the unique compound index that serializes attempt
// numbering: two concurrent submissions from the same student on the same
// quiz cannot both claim the same attempt_number. Called once at startup.
func (r *AttemptRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "quiz_id", Value: 1},
				{Key: "attempt_number", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "completed_at", Value: -1}},
		},
	}
	_, err := r.Col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AttemptRepository) CountCompleted(ctx context.Context, studentID, quizID string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{
		"student_id":   studentID,
		"quiz_id":      quizID,
		"is_completed": true,
	})
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.Col.InsertOne(ctx, attempt)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateAttempt
	}
	return err
}

// FindForStudent looks up an attempt by id, owner and quiz in a single
// query. Ownership and quiz membership are part of the filter, so an
// attempt belonging to another student or quiz is indistinguishable from
// one that does not exist.
func (r *AttemptRepository) FindForStudent(ctx context.Context, attemptID, studentID, quizID string) (*models.QuizAttempt, error) {
	if err := checkID(attemptID); err != nil {
		return nil, err
	}
	var attempt models.QuizAttempt
	err := r.Col.FindOne(ctx, bson.M{
		"_id":        attemptID,
		"student_id": studentID,
		"quiz_id":    quizID,
	}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"student_id": studentID, "is_completed": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.QuizAttempt
	for cur.Next(ctx) {
		var a models.QuizAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}
