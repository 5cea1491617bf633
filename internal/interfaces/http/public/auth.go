package public

import (
	"context"
	"net/http"

	"github.com/campavao/my-places/internal/interfaces/http/common"
)

func (h *Handler) signUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req common.SignUpRequest
		if err := common.DecodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "リクエスト形式が不正です")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		result, err := h.auth.SignUp(ctx, req.Email, req.Password, req.Name)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		// プロフィールはクレデンシャル作成直後に作る
		if _, err := h.users.CreateProfile(ctx, result.User.ID, result.User.Name, result.User.Email); err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, common.AuthResponse(result))
	}
}

func (h *Handler) signInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req common.SignInRequest
		if err := common.DecodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, common.CodeInvalidRequest, "リクエスト形式が不正です")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		result, err := h.auth.SignIn(ctx, req.Email, req.Password)
		if err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		// 既存アカウントでプロフィールが欠けている場合は補完する
		if _, err := h.users.Profile(ctx, result.User.ID); err != nil {
			if _, err := h.users.CreateProfile(ctx, result.User.ID, result.User.Name, result.User.Email); err != nil {
				common.WriteServiceError(h.logger, w, err)
				return
			}
		}

		common.WriteJSON(h.logger, w, http.StatusOK, common.AuthResponse(result))
	}
}

func (h *Handler) signOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := common.TokenFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, common.CodeInternal, "認証情報の取得に失敗しました")
			return
		}

		if err := h.auth.SignOut(r.Context(), token); err != nil {
			common.WriteServiceError(h.logger, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, common.CodeInternal, "認証情報の取得に失敗しました")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, common.VerifyResponse{
			Status: "ok",
			User:   user,
		})
	}
}
