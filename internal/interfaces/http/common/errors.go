package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
)

// WriteServiceError maps service and auth errors onto an HTTP status and
// ErrorResponse. Unexpected errors are logged and reported as 500.
func WriteServiceError(logger *log.Logger, w http.ResponseWriter, err error) {
	var authErr *auth.Error
	switch {
	case errors.As(err, &authErr):
		kind := authErr.Kind
		if kind == auth.KindUnknown {
			logInternal(logger, err)
			WriteError(logger, w, http.StatusInternalServerError, kind.Code(), kind.Message())
			return
		}
		WriteError(logger, w, authStatus(kind), kind.Code(), kind.Message())
	case errors.Is(err, application.ErrNotFound), errors.Is(err, application.ErrNotOwner):
		WriteError(logger, w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, application.ErrInvalidPlace):
		WriteError(logger, w, http.StatusBadRequest, CodeInvalidPlace, err.Error())
	case errors.Is(err, application.ErrInvalidImageName):
		WriteError(logger, w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	default:
		logInternal(logger, err)
		WriteError(logger, w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func authStatus(kind auth.ErrorKind) int {
	switch kind {
	case auth.KindEmailInUse:
		return http.StatusConflict
	case auth.KindInvalidCredential, auth.KindTokenInvalid:
		return http.StatusUnauthorized
	case auth.KindUserNotFound:
		return http.StatusNotFound
	case auth.KindWeakPassword, auth.KindInvalidEmail:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func logInternal(logger *log.Logger, err error) {
	if logger != nil {
		logger.Printf("リクエスト処理に失敗: %v", err)
	}
}
