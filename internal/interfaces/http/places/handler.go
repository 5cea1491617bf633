package places

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campavao/my-places/internal/places/application"
)

// Handler wires the signed-in user's place and image endpoints.
type Handler struct {
	logger         *log.Logger
	places         *application.PlaceService
	images         *application.ImageService
	maxUploadBytes int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	Places         *application.PlaceService
	Images         *application.ImageService
	MaxUploadBytes int64
}

// NewHandler constructs the place handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		logger:         logger,
		places:         cfg.Places,
		images:         cfg.Images,
		maxUploadBytes: maxUpload,
	}
}

// Register mounts every place route behind authMiddleware.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/places", h.placeListHandler())
		r.Post("/places", h.placeCreateHandler())
		r.Get("/places/export.csv", h.placeExportHandler())
		r.Get("/places/{id}", h.placeDetailHandler())
		r.Put("/places/{id}", h.placeSaveHandler())
		r.Post("/images", h.imageUploadHandler())
		r.Get("/images/{name}/url", h.imageURLHandler())
	})
}
