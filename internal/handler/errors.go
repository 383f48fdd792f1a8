package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/notes/internal/domain"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure. Fields is set for form validation errors.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// writeJSON encodes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WarnContext(r.Context(), "write response", "path", r.URL.Path, "error", err)
	}
}

// notFound is the 404 page for unknown routes and missing resources.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.log.InfoContext(r.Context(), "page not found",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	s.writeJSON(w, r, http.StatusNotFound, errorBody("not_found", "page not found"))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
}

// serverError logs err with the request and writes the generic 500 page.
// The error text never reaches the client.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "internal error",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"error", err,
	)
	s.writeJSON(w, r, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

// fail maps a service error to its response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
	case errors.As(err, &verr):
		body := errorBody("validation_error", "invalid form")
		body.Error.Fields = verr.Fields
		s.writeJSON(w, r, http.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrValidation):
		s.writeJSON(w, r, http.StatusUnprocessableEntity, errorBody("validation_error", "invalid form"))
	case errors.Is(err, domain.ErrConflict):
		s.writeJSON(w, r, http.StatusConflict, errorBody("conflict", "a note with this slug was created at the same time, please retry"))
	case errors.Is(err, domain.ErrProtected):
		s.writeJSON(w, r, http.StatusConflict, errorBody("protected", "the object is still referenced"))
	case errors.Is(err, domain.ErrUnauthorized):
		s.writeJSON(w, r, http.StatusUnauthorized, errorBody("unauthorized", "invalid username or password"))
	default:
		s.serverError(w, r, err)
	}
}
