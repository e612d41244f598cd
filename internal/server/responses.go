package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail writes err with the status its kind maps to. Unclassified errors are
// logged and hidden from the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := mapError(err)
	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrInvalidRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// list keeps empty results encoded as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func queryDate(w http.ResponseWriter, r *http.Request, key string) (civil.Date, bool) {
	raw := r.URL.Query().Get(key)
	d, err := civil.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key+" date "+strconv.Quote(raw)+", want YYYY-MM-DD")
		return civil.Date{}, false
	}
	return d, true
}

func queryTime(w http.ResponseWriter, r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+key+" time "+strconv.Quote(raw)+", want RFC3339")
		return time.Time{}, false
	}
	return t, true
}
