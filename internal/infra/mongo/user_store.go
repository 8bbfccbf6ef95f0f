package mongo

import (
	"context"
	"errors"
	"fmt"

	"globent-quiz-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		switch {
		case duplicateOn(err, "email_1"):
			return domain.ErrEmailTaken
		case duplicateOn(err, "username_1"):
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("mongo insert user: %w", err)
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id string) (domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var user domain.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("mongo find user: %w", err)
	}
	return user, nil
}
