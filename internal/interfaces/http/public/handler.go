package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
)

// Handler wires account and image-streaming endpoints to application services.
type Handler struct {
	logger *log.Logger
	auth   *auth.Service
	users  *application.UserService
	images *application.ImageService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger *log.Logger
	Auth   *auth.Service
	Users  *application.UserService
	Images *application.ImageService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		logger: logger,
		auth:   cfg.Auth,
		users:  cfg.Users,
		images: cfg.Images,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/auth/signup", h.signUpHandler())
	r.Post("/auth/signin", h.signInHandler())
	r.Get("/images/{name}", h.imageStreamHandler())
	r.With(authMiddleware).Post("/auth/signout", h.signOutHandler())
	r.With(authMiddleware).Get("/auth/verify", h.authVerifyHandler())
}
