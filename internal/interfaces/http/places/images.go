package places

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campavao/my-places/internal/interfaces/http/common"
)

const multipartOverhead = 1 << 20

func (h *Handler) imageUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.requireUser(w, r); !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				common.WriteError(h.logger, w, http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "ファイルサイズが大きすぎます")
				return
			}
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "file フィールドが必要です")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "ファイルの読み込みに失敗しました")
			return
		}
		if int64(len(data)) > h.maxUploadBytes {
			common.WriteError(h.logger, w, http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "ファイルサイズが大きすぎます")
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		name, err := h.images.Upload(ctx, header.Filename, data, contentType)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, common.ImageUploadResponse{
			Name: name,
			Size: int64(len(data)),
		})
	}
}

func (h *Handler) imageURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.requireUser(w, r); !ok {
			return
		}

		name := chi.URLParam(r, "name")

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		url, err := h.images.ResolveURL(ctx, name)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, common.ImageURLResponse{Name: name, URL: url})
	}
}
