package places

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campavao/my-places/internal/infrastructure/csvio"
	"github.com/campavao/my-places/internal/interfaces/http/common"
	"github.com/campavao/my-places/internal/places/domain"
)

func (h *Handler) placeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		list, err := h.places.List(ctx, user.ID)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, common.PlaceListResponse{
			Places:  list.Places,
			Skipped: list.Skipped,
		})
	}
}

func (h *Handler) placeCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		place, err := h.places.Create(ctx, user.ID)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		w.Header().Set("Location", "/places/"+place.ID)
		common.WriteJSON(h.logger, w, http.StatusCreated, place)
	}
}

func (h *Handler) placeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		place, err := h.places.Get(ctx, user.ID, chi.URLParam(r, "id"))
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, place)
	}
}

func (h *Handler) placeSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.requireUser(w, r)
		if !ok {
			return
		}

		var place domain.Place
		if err := common.DecodeJSON(w, r, &place); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "リクエスト形式が不正です")
			return
		}

		id := chi.URLParam(r, "id")
		if place.ID == "" {
			place.ID = id
		}
		if place.ID != id {
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "id がパスと一致しません")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		saved, err := h.places.Save(ctx, user.ID, place)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, saved)
	}
}

func (h *Handler) placeExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := h.requireUser(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		list, err := h.places.List(ctx, user.ID)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		// 途中で失敗しても 500 を返せるようにバッファしてから書き出す
		var buf bytes.Buffer
		if err := csvio.WritePlaces(&buf, list.Places); err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="places.csv"`)
		if len(list.Skipped) > 0 {
			w.Header().Set("X-Skipped-Places", strings.Join(list.Skipped, ","))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Printf("CSV の送信に失敗 user=%s: %v", user.ID, err)
		}
	}
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (common.AuthenticatedUser, bool) {
	user, ok := common.UserFromContext(r.Context())
	if !ok || user.ID == "" {
		common.WriteError(h.logger, w, http.StatusUnauthorized, common.CodeUnauthorized, "認証が必要です")
		return common.AuthenticatedUser{}, false
	}
	return user, true
}
