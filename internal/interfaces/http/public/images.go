package public

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campavao/my-places/internal/interfaces/http/common"
)

func (h *Handler) imageStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		reader, contentType, err := h.images.Open(ctx, name)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}
		defer reader.Close()

		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, reader); err != nil {
			h.logger.Printf("画像の送信に失敗 name=%s: %v", name, err)
		}
	}
}
