package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/infrastructure/store"
	"github.com/campavao/my-places/internal/places/application"
)

func init() {
	ctx := context.Background()
	for _, scheme := range []string{"mongodb", "mongodb+srv"} {
		if err := store.Register(ctx, scheme, NewStore); err != nil {
			panic(err)
		}
	}
}

// Store は MongoDB クライアントと各コレクションのリポジトリを束ねる。
type Store struct {
	client      *mongo.Client
	places      *PlaceRepository
	users       *UserRepository
	credentials *CredentialRepository
}

// NewStore は URI で MongoDB に接続し、Store を返す。接続タイムアウトは opts.ConnectTimeout。
func NewStore(ctx context.Context, uri string, opts store.Options) (store.Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return NewStoreFromClient(client, opts), nil
}

// NewStoreFromClient は接続済みクライアントから Store を組み立てる。
func NewStoreFromClient(client *mongo.Client, opts store.Options) *Store {
	db := client.Database(opts.Database)
	return &Store{
		client:      client,
		places:      NewPlaceRepository(db, opts.PlaceCollection),
		users:       NewUserRepository(db, opts.UserCollection),
		credentials: NewCredentialRepository(db, opts.CredentialCollection),
	}
}

func (s *Store) Places() application.PlaceRepository {
	return s.places
}

func (s *Store) Users() application.UserRepository {
	return s.users
}

func (s *Store) Credentials() auth.CredentialRepository {
	return s.credentials
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
