package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps an error category to its status code. Persistence and unknown
// failures are logged and reported as 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case errs.KindVersionConflict:
		writeError(w, http.StatusConflict, err.Error())
	case errs.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error(ctx, "request failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func issueIDParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
