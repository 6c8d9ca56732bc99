package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rpattn/fishql/internal/export"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/referential"
	"github.com/rpattn/fishql/internal/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes payload with status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

// WriteError maps err to a status code and writes it as JSON.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, statusOf(err), errorBody{Error: err.Error()})
}

// badRequest marks client input errors.
type badRequest struct {
	err error
}

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func statusOf(err error) int {
	var bad badRequest
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, referential.ErrNotFound),
		errors.Is(err, model.ErrUnknownTypename):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrEmptyEntity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
