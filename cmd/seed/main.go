package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/config"
	"github.com/campavao/my-places/internal/infrastructure/csvio"
	_ "github.com/campavao/my-places/internal/infrastructure/mongo"
	_ "github.com/campavao/my-places/internal/infrastructure/sqlite"
	"github.com/campavao/my-places/internal/infrastructure/store"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/domain"
)

type seedOptions struct {
	email    string
	password string
	name     string
	csvPath  string
	demo     bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreURI, store.Options{
		Database:             cfg.Database,
		PlaceCollection:      cfg.PlaceCollection,
		UserCollection:       cfg.UserCollection,
		CredentialCollection: cfg.CredentialCollection,
		ConnectTimeout:       cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("ストア接続に失敗しました: %v", err)
	}
	defer func() {
		_ = st.Close(context.Background())
	}()

	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
	if err != nil {
		log.Fatalf("トークン設定に失敗しました: %v", err)
	}

	places, err := collectPlaces(opts)
	if err != nil {
		log.Fatalf("シードデータの準備に失敗しました: %v", err)
	}

	seeder := &seeder{
		logger: cfg.ServerLog,
		auth:   auth.NewService(auth.Config{Logger: cfg.ServerLog, Credentials: st.Credentials(), Tokens: tokens}),
		users:  application.NewUserService(st.Users()),
		places: application.NewPlaceService(st.Places(), st.Users(), cfg.ServerLog),
	}
	user, saved, err := seeder.run(ctx, opts, places)
	if err != nil {
		log.Fatalf("シードに失敗しました: %v", err)
	}

	log.Printf("Seed 完了: user=%s (%s) places=%d", user.Email, user.ID, saved)
	log.Printf("Store: %s", cfg.StoreURI)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.email, "email", "demo@example.com", "シード先アカウントのメールアドレス")
	flag.StringVar(&opts.password, "password", "demo-password", "アカウントが無い場合に作成するパスワード")
	flag.StringVar(&opts.name, "name", "Demo", "表示名")
	flag.StringVar(&opts.csvPath, "csv", "", "取り込む CSV ファイル (places/export.csv と同じ列)")
	flag.BoolVar(&opts.demo, "demo", true, "デモ用の店舗を投入する")
	flag.Parse()

	if !opts.demo && opts.csvPath == "" {
		fmt.Fprintln(os.Stderr, "-demo=false の場合は -csv を指定してください")
		os.Exit(2)
	}
	return opts
}

func collectPlaces(opts seedOptions) ([]domain.Place, error) {
	var places []domain.Place
	if opts.demo {
		places = append(places, demoPlaces()...)
	}
	if opts.csvPath != "" {
		imported, err := csvio.ReadPlacesFromPath(opts.csvPath)
		if err != nil {
			return nil, err
		}
		places = append(places, imported...)
	}
	return places, nil
}

type seeder struct {
	logger *log.Logger
	auth   *auth.Service
	users  *application.UserService
	places *application.PlaceService
}

// run signs the account up, or in when it already exists, and appends every
// place to its list.
func (s *seeder) run(ctx context.Context, opts seedOptions, places []domain.Place) (auth.User, int, error) {
	result, err := s.auth.SignUp(ctx, opts.email, opts.password, opts.name)
	if auth.KindOf(err) == auth.KindEmailInUse {
		result, err = s.auth.SignIn(ctx, opts.email, opts.password)
	}
	if err != nil {
		return auth.User{}, 0, fmt.Errorf("account %s: %w", opts.email, err)
	}
	user := result.User

	if _, err := s.users.CreateProfile(ctx, user.ID, user.Name, user.Email); err != nil {
		return auth.User{}, 0, err
	}

	saved := 0
	for _, place := range places {
		shell, err := s.places.Create(ctx, user.ID)
		if err != nil {
			return user, saved, err
		}
		place.ID = shell.ID
		if _, err := s.places.Save(ctx, user.ID, place); err != nil {
			return user, saved, fmt.Errorf("save %q: %w", place.Name, err)
		}
		s.logger.Printf("seeded place %s (%s)", place.Name, place.ID)
		saved++
	}
	return user, saved, nil
}
