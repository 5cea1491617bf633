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

// PlaceRepository implements application.PlaceRepository using MongoDB.
type PlaceRepository struct {
	collection *mongo.Collection
}

// NewPlaceRepository creates a new Mongo-backed place repository.
func NewPlaceRepository(db *mongo.Database, collectionName string) *PlaceRepository {
	return &PlaceRepository{collection: db.Collection(collectionName)}
}

// Put は _id をキーにドキュメント全体を置き換える。存在しなければ作成する。
func (r *PlaceRepository) Put(ctx context.Context, place domain.Place) error {
	doc := NewPlaceDocument(place)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("replace place %s: %w", doc.ID, err)
	}
	return nil
}

// Get は単一の place を返す。見つからなければ application.ErrNotFound。
func (r *PlaceRepository) Get(ctx context.Context, id string) (domain.Place, error) {
	var doc PlaceDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Place{}, fmt.Errorf("place %s: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return domain.Place{}, fmt.Errorf("find place %s: %w", id, err)
	}
	return doc.Place(), nil
}
