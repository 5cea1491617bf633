package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campavao/my-places/internal/auth"
)

// CredentialRepository persists sign-in credentials keyed by email.
type CredentialRepository struct {
	collection *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database, collectionName string) *CredentialRepository {
	return &CredentialRepository{collection: db.Collection(collectionName)}
}

// Create は $setOnInsert による upsert で登録し、既存メールアドレスなら ErrCredentialExists を返す。
func (r *CredentialRepository) Create(ctx context.Context, cred auth.Credential) error {
	doc := NewCredentialDocument(cred)
	update := bson.M{"$setOnInsert": doc}
	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.Email}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrCredentialExists
	}
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	if result.UpsertedCount == 0 {
		return auth.ErrCredentialExists
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, email string) (auth.Credential, error) {
	var doc CredentialDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.Credential{}, auth.ErrCredentialNotFound
	}
	if err != nil {
		return auth.Credential{}, fmt.Errorf("find credential: %w", err)
	}
	return doc.Credential(), nil
}
