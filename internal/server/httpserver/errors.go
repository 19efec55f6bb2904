package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// writeServiceError maps service errors to status codes. Unexpected errors
// are logged and reported without detail.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorStorageDisabled):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
