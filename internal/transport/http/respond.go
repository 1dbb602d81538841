package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizboard/internal/domain"
)

type errResp struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errResp{Error: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, body)
}

// statusFor maps error kinds to HTTP statuses. Not-found checks run first
// because stores report them wrapped in a BackendError.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrResultNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsBackend(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON")
	}
	return nil
}
