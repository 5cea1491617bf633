package server

import (
	"net/http"
	"strings"

	"github.com/campavao/my-places/internal/auth"
	commonhttp "github.com/campavao/my-places/internal/interfaces/http/common"
)

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// authMiddleware は Authorization ヘッダーのトークンを検証し、認証済みユーザーをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, message := bearerToken(r)
		if message != "" {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, commonhttp.CodeUnauthorized, message)
			return
		}

		user, err := s.authService.Verify(r.Context(), tokenString)
		if err != nil {
			s.logger.Printf("トークン検証に失敗: %v", err)
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, auth.KindTokenInvalid.Code(), auth.KindTokenInvalid.Message())
			return
		}

		ctx := commonhttp.ContextWithUser(r.Context(), commonhttp.AuthenticatedUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		}, tokenString)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken は Authorization ヘッダーからトークンを取り出す。失敗時はメッセージを返す。
func bearerToken(r *http.Request) (string, string) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", "Authorization ヘッダーがありません"
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", "Bearer トークンを指定してください"
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if tokenString == "" {
		return "", "アクセストークンが空です"
	}
	return tokenString, ""
}
