package web

// errors.go maps handler errors to an HTTP status and a JSON body.
//
// The technical error goes to the log with the request ID; clients only see
// the catalog.UserMessage for it, so driver and file-system details never
// leave the server.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/motorcat/internal/catalog"
	"github.com/JonMunkholm/motorcat/internal/importer"
	"github.com/JonMunkholm/motorcat/internal/logging"
)

var (
	errNoFile               = errors.New("no file provided")
	errConfirmationRequired = errors.New("confirmation required: pass confirm=yes")
	errRateLimited          = errors.New("rate limit exceeded")
	errBadRequestBody       = errors.New("invalid request body")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the core packages.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, importer.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoFile), errors.Is(err, errConfirmationRequired), errors.Is(err, errBadRequestBody):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrTooManyImports), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing JSON form.
// A zero status is derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := catalog.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	)

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	writeJSON(w, status, ErrorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// writeJSON encodes v with the given status. Encoding errors can only be
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
