package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"servecore/internal/manager"
	"servecore/internal/scheduler"
	"servecore/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to a status code and whether the client
// should retry later.
func statusFor(err error) (int, bool) {
	var he HTTPError
	switch {
	case scheduler.IsUnknownCategory(err), manager.IsUnknownModel(err):
		return http.StatusNotFound, false
	case scheduler.IsTaskTimeout(err), manager.IsModelLoadError(err):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, scheduler.ErrClosed), errors.Is(err, manager.ErrClosed),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, false
	case errors.As(err, &he):
		return he.StatusCode(), false
	default:
		return http.StatusInternalServerError, false
	}
}

// writeServiceError maps err and writes it as a JSON error payload.
func writeServiceError(w http.ResponseWriter, err error) int {
	status, retry := statusFor(err)
	if retry {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		unavailableTotal.WithLabelValues(unavailableReason(err)).Inc()
	}
	writeJSONError(w, status, err.Error())
	return status
}

func unavailableReason(err error) string {
	if scheduler.IsTaskTimeout(err) {
		return "task_timeout"
	}
	return "model_load"
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Str("event", "encode_error").Err(err).Msg("")
	}
}
