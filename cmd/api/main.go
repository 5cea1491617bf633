package main

import (
	"context"
	"log"

	"github.com/campavao/my-places/internal/config"
	"github.com/campavao/my-places/internal/infrastructure/blob"
	_ "github.com/campavao/my-places/internal/infrastructure/mongo"
	_ "github.com/campavao/my-places/internal/infrastructure/sqlite"
	"github.com/campavao/my-places/internal/infrastructure/store"
	"github.com/campavao/my-places/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	opts := store.Options{
		Database:             cfg.Database,
		PlaceCollection:      cfg.PlaceCollection,
		UserCollection:       cfg.UserCollection,
		CredentialCollection: cfg.CredentialCollection,
		ConnectTimeout:       cfg.Timeout,
	}
	st, err := store.Open(ctx, cfg.StoreURI, opts)
	if err != nil {
		cfg.ServerLog.Fatalf("ストア接続に失敗しました (対応スキーム: %v): %v", store.Schemes(), err)
	}

	blobs, err := blob.Open(ctx, cfg.BlobURI, cfg.PublicBaseURL)
	if err != nil {
		cfg.ServerLog.Fatalf("バケットを開けませんでした: %v", err)
	}

	app, err := server.New(cfg, st, blobs)
	if err != nil {
		cfg.ServerLog.Fatalf("サーバー初期化に失敗: %v", err)
	}
	if err := app.Run(); err != nil {
		log.Fatalf("サーバー起動に失敗: %v", err)
	}
}
