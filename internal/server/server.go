package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/config"
	"github.com/campavao/my-places/internal/infrastructure/blob"
	"github.com/campavao/my-places/internal/infrastructure/store"
	commonhttp "github.com/campavao/my-places/internal/interfaces/http/common"
	placeshttp "github.com/campavao/my-places/internal/interfaces/http/places"
	publichttp "github.com/campavao/my-places/internal/interfaces/http/public"
	"github.com/campavao/my-places/internal/places/application"
)

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *log.Logger
	store          store.Store
	blobs          *blob.Store
	authService    *auth.Service
	placeService   *application.PlaceService
	userService    *application.UserService
	imageService   *application.ImageService
	maxUploadBytes int64
	addr           string
	allowedOrigins []string
}

// New は Config とストアを受け取り、アプリケーションサービスとハンドラを組み立てた Server を返す。
func New(cfg config.Config, st store.Store, blobs *blob.Store) (*Server, error) {
	logger := cfg.ServerLog
	if logger == nil {
		logger = log.Default()
	}

	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("configure tokens: %w", err)
	}

	return &Server{
		logger:         logger,
		store:          st,
		blobs:          blobs,
		authService:    auth.NewService(auth.Config{Logger: logger, Credentials: st.Credentials(), Tokens: tokens}),
		placeService:   application.NewPlaceService(st.Places(), st.Users(), logger),
		userService:    application.NewUserService(st.Users()),
		imageService:   application.NewImageService(blobs, logger),
		maxUploadBytes: cfg.MaxUploadBytes,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}, nil
}

// Handler はミドルウェアと全ルートを組み立てたルータを返す。
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger: s.logger,
		Auth:   s.authService,
		Users:  s.userService,
		Images: s.imageService,
	})
	publicHandler.Register(router, s.authMiddleware)

	placeHandler := placeshttp.NewHandler(placeshttp.Config{
		Logger:         s.logger,
		Places:         s.placeService,
		Images:         s.imageService,
		MaxUploadBytes: s.maxUploadBytes,
	})
	placeHandler.Register(router, s.authMiddleware)

	return router
}

// Run はHTTPサーバーを起動し、シグナルを受けるまでブロックする。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// healthHandler はストアへの疎通確認を行う。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// shutdown はストアとバケットをタイムアウト付きで閉じる。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.store.Close(shutdownCtx); err != nil {
		s.logger.Printf("ストア切断時にエラー: %v", err)
	}
	if err := s.blobs.Close(); err != nil {
		s.logger.Printf("バケット切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
