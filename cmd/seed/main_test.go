package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/infrastructure/sqlite"
	"github.com/campavao/my-places/internal/infrastructure/store"
	"github.com/campavao/my-places/internal/places/application"
)

func newSeeder(t *testing.T) (*seeder, *application.PlaceService) {
	t.Helper()
	st, err := sqlite.OpenStore(filepath.Join(t.TempDir(), "seed.db"), store.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	tokens, err := auth.NewTokens(auth.TokenConfig{Secret: []byte("seed-secret")})
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	places := application.NewPlaceService(st.Places(), st.Users(), logger)
	return &seeder{
		logger: logger,
		auth: auth.NewService(auth.Config{
			Logger:      logger,
			Credentials: st.Credentials(),
			Tokens:      tokens,
			Params:      auth.ScryptParams{N: 1 << 10, R: 8, P: 1, KeyLen: 32},
		}),
		users:  application.NewUserService(st.Users()),
		places: places,
	}, places
}

func TestSeedDemoPlacesTwice(t *testing.T) {
	ctx := context.Background()
	s, places := newSeeder(t)
	opts := seedOptions{email: "demo@example.com", password: "demo-password", name: "Demo", demo: true}

	fixtures, err := collectPlaces(opts)
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	user, saved, err := s.run(ctx, opts, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 3, saved)

	_, _, err = s.run(ctx, opts, fixtures)
	require.NoError(t, err)

	list, err := places.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list.Places, 6)
	assert.Equal(t, "Spacca Napoli", list.Places[0].Name)
	assert.Equal(t, "Sweetgreen", list.Places[5].Name)
	assert.NotEqual(t, list.Places[0].ID, list.Places[3].ID)
}

func TestSeedFromCSV(t *testing.T) {
	ctx := context.Background()
	s, places := newSeeder(t)

	path := filepath.Join(t.TempDir(), "places.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,cuisine,items\nCafe X,Coffee,Latte|Drink|5\n"), 0o600))

	opts := seedOptions{email: "csv@example.com", password: "csv-password", csvPath: path}
	fixtures, err := collectPlaces(opts)
	require.NoError(t, err)

	user, saved, err := s.run(ctx, opts, fixtures)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	list, err := places.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list.Places, 1)
	assert.Equal(t, "Cafe X", list.Places[0].Name)
	assert.InDelta(t, 1.0, list.Places[0].Review.Overall(), 1e-9)
}

func TestSeedWrongPasswordForExistingAccount(t *testing.T) {
	ctx := context.Background()
	s, _ := newSeeder(t)

	_, _, err := s.run(ctx, seedOptions{email: "demo@example.com", password: "demo-password"}, nil)
	require.NoError(t, err)

	_, _, err = s.run(ctx, seedOptions{email: "demo@example.com", password: "other-password"}, nil)
	assert.Equal(t, auth.KindInvalidCredential, auth.KindOf(err))
}
