package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tendant/simple-media/pkg/simplemedia"
)

// statusFor maps service error categories onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, simplemedia.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, simplemedia.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, simplemedia.ErrAlreadyLiked):
		return http.StatusConflict
	case errors.Is(err, simplemedia.ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes the mapped status. Internal errors are not echoed.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.WarnContext(r.Context(), msg, "path", r.URL.Path, "status", status, "error", err)
	}

	text := err.Error()
	if status == http.StatusInternalServerError {
		text = http.StatusText(status)
	}
	http.Error(w, text, status)
}
