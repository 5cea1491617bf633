package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/domain"
)

// UserRepository stores user profiles keyed by auth user id.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{collection: db.Collection(collectionName)}
}

func (r *UserRepository) Put(ctx context.Context, user domain.UserProfile) error {
	doc := NewUserDocument(user)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("replace user %s: %w", doc.ID, err)
	}
	return nil
}

// AppendPlace pushes placeID onto the stored list in a single update so
// concurrent creates never drop an id.
func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$push": bson.M{"places": placeID}}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, opts); err != nil {
		return fmt.Errorf("append place to user %s: %w", userID, err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	var doc UserDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserProfile{}, fmt.Errorf("user %s: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return doc.UserProfile(), nil
}
