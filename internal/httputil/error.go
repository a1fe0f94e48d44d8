package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
)

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
	Changed bool   `json:"changed"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bracket.ErrInvalidState), errors.Is(err, bracket.ErrAlreadyGenerated):
		return http.StatusConflict
	case errors.Is(err, bracket.ErrInsufficientParticipants):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bracket.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON body. Nothing was changed on the server when
// this is called.
func Error(w http.ResponseWriter, msg string, err error) {
	ErrorWithDetails(w, msg, err, nil)
}

// ErrorWithDetails is Error with an extra payload, e.g. the per category
// outcome of a failed draw.
func ErrorWithDetails(w http.ResponseWriter, msg string, err error, details any) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		InternalServerError(w, msg, err)
		return
	}
	slog.Warn("request failed", "message", msg, "status", status, "error", err)

	body := errorBody{Error: err.Error(), Details: details}
	var verr *bracket.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	WriteJSON(w, status, body)
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{Error: msg})
}
