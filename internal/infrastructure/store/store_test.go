package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
)

type nullStore struct {
	uri string
}

func (s *nullStore) Places() application.PlaceRepository   { return nil }
func (s *nullStore) Users() application.UserRepository     { return nil }
func (s *nullStore) Credentials() auth.CredentialRepository { return nil }
func (s *nullStore) Ping(context.Context) error             { return nil }
func (s *nullStore) Close(context.Context) error            { return nil }

func TestOpenDispatchesOnScheme(t *testing.T) {
	ctx := context.Background()
	var gotOpts Options
	err := Register(ctx, "null", func(_ context.Context, uri string, opts Options) (Store, error) {
		gotOpts = opts
		return &nullStore{uri: uri}, nil
	})
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Database = "test"
	s, err := Open(ctx, "null://anything", opts)
	require.NoError(t, err)
	assert.Equal(t, "null://anything", s.(*nullStore).uri)
	assert.Equal(t, "test", gotOpts.Database)
	assert.Contains(t, Schemes(), "null://")
}

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "cassandra://db", DefaultOptions())
	assert.Error(t, err)
}

func TestInitializationErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	require.NoError(t, Register(ctx, "broken", func(context.Context, string, Options) (Store, error) {
		return nil, boom
	}))
	_, err := Open(ctx, "broken://", DefaultOptions())
	assert.ErrorIs(t, err, boom)
}
