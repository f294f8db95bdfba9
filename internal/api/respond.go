package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"resume-forge/internal/models"

	"github.com/go-chi/chi/v5/middleware"
)

// Envelope is the uniform response shape for every JSON endpoint.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"requestId"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// fail writes an error envelope with an explicit status, for cases that do
// not go through the AppError taxonomy (bad bearer headers, login failures).
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Message:   message,
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// respondError maps an error through the taxonomy. Internal errors are logged
// with the request id and returned as a generic message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := models.HTTPStatus(err)

	var appErr *models.AppError
	message := "internal server error"
	if errors.As(err, &appErr) && appErr.Kind != models.KindInternal {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err)
	}

	s.fail(w, r, status, message)
}
