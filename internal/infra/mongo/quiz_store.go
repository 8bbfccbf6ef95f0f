package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"globent-quiz-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuizStore keeps each quiz as one document with embedded questions.
type QuizStore struct {
	col *mongo.Collection
}

func NewQuizStore(db *mongo.Database) *QuizStore {
	return &QuizStore{col: db.Collection(quizzesCollection)}
}

func (s *QuizStore) Insert(ctx context.Context, quiz domain.Quiz) error {
	if _, err := s.col.InsertOne(ctx, quiz); err != nil {
		if duplicateOn(err, "pin_1") {
			return domain.ErrPINCollision
		}
		return fmt.Errorf("mongo insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) ByID(ctx context.Context, id string) (domain.Quiz, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *QuizStore) ByPIN(ctx context.Context, pin string) (domain.Quiz, error) {
	return s.findOne(ctx, bson.M{"pin": pin})
}

func (s *QuizStore) List(ctx context.Context, query string) ([]domain.QuizSummary, error) {
	filter := bson.M{}
	if query = strings.TrimSpace(query); query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}}
	}
	return s.summaries(ctx, filter)
}

func (s *QuizStore) ByOwner(ctx context.Context, ownerID string) ([]domain.QuizSummary, error) {
	return s.summaries(ctx, bson.M{"createdBy": ownerID})
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete quiz: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) findOne(ctx context.Context, filter bson.M) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := s.col.FindOne(ctx, filter).Decode(&quiz); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("mongo find quiz: %w", err)
	}
	return quiz, nil
}

type summaryDoc struct {
	ID            string    `bson:"_id"`
	Title         string    `bson:"title"`
	Description   string    `bson:"description"`
	PIN           string    `bson:"pin"`
	CreatedAt     time.Time `bson:"createdAt"`
	QuestionCount int       `bson:"questionCount"`
}

// summaries projects matching quizzes without their questions, newest first.
func (s *QuizStore) summaries(ctx context.Context, filter bson.M) ([]domain.QuizSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"title":         1,
			"description":   1,
			"pin":           1,
			"createdAt":     1,
			"questionCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$questions", bson.A{}}}},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return nil, fmt.Errorf("mongo list quizzes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []summaryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode quizzes: %w", err)
	}
	out := make([]domain.QuizSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.QuizSummary{
			ID:            d.ID,
			Title:         d.Title,
			Description:   d.Description,
			PIN:           d.PIN,
			CreatedAt:     d.CreatedAt.UTC(),
			QuestionCount: d.QuestionCount,
		})
	}
	return out, nil
}
