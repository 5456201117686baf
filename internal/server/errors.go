package server

import (
	"net/http"

	"github.com/spigell/interview-readiness/internal/pipeline"
)

// errorBody is the JSON shape of every /analyze failure.
type errorBody struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch pipeline.KindOf(err) {
	case "":
		return http.StatusOK
	case pipeline.KindInvalidInput:
		return http.StatusBadRequest
	case pipeline.KindResumeRejected, pipeline.KindGenerationUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	pe := pipeline.AsError(err)
	s.jsonResponse(w, HTTPStatus(pe), errorBody{
		Error:     string(pe.Kind),
		Message:   pe.Message,
		Details:   pe.Details,
		RequestID: RequestID(r.Context()),
	})
}
