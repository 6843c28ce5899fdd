package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mentorai/mentorai/internal/auth"
	"github.com/mentorai/mentorai/internal/errorz"
)

// envelope is the response shape shared by all endpoints.
//
// Status is "success" or "error", Code repeats the HTTP status so
// clients can distinguish outcomes without the transport layer.
type envelope struct {
	Status   string `json:"status"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Metadata any    `json:"metadata,omitempty"`
}

func (s *Server) writeSuccess(w http.ResponseWriter, code int, message string, metadata any) {
	s.writeEnvelope(w, envelope{
		Status:   "success",
		Code:     code,
		Message:  message,
		Metadata: metadata,
	})
}

func (s *Server) writeEnvelope(w http.ResponseWriter, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)

	if err := json.NewEncoder(w).Encode(e); err != nil {
		s.deps.Logger.Error("failed to write response", "error", err)
	}
}

// handleError translates an error to the response envelope.
//
// Business failures map to a fixed status and message. Anything
// unrecognized is logged with full detail and surfaced as a generic
// internal server error.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := http.StatusInternalServerError, "Internal server error"

	var invalid errorz.InvalidInput

	switch {
	case errors.Is(err, auth.ErrDuplicateUser):
		code, message = http.StatusConflict, "Email already registered"
	case errors.Is(err, auth.ErrTokenInvalid):
		code, message = http.StatusBadRequest, "Invalid or expired verification token"
	case errors.As(err, &invalid):
		code, message = http.StatusBadRequest, invalidInputMessage(invalid)
	case errors.Is(err, auth.ErrInvalidCredentials):
		code, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrNotVerified):
		code, message = http.StatusUnauthorized, "Account not verified. Please check your email."
	case errors.Is(err, errAuthRequired):
		code, message = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, auth.ErrInvalidSession):
		code, message = http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, errorz.ErrNotFound):
		code, message = http.StatusNotFound, "Resource not found"
	default:
		s.deps.Logger.Error("failed to handle request",
			"method", r.Method,
			"url", r.URL.String(),
			"error", err,
		)
	}

	s.writeEnvelope(w, envelope{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func invalidInputMessage(invalid errorz.InvalidInput) string {
	parts := make([]string, 0, len(invalid))
	for _, err := range invalid {
		parts = append(parts, err.Error())
	}
	return "Invalid input: " + strings.Join(parts, ", ")
}

// decodeJSON strictly decodes the request body into T. Unknown fields
// and malformed values are input errors, not server errors.
func decodeJSON[T any](r *http.Request) (T, error) {
	var v T

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&v); err != nil {
		return v, errorz.InvalidInput{fmt.Errorf("malformed request body: %w", err)}
	}

	return v, nil
}
