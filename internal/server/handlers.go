package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/spigell/interview-readiness/internal/logger"
	"github.com/spigell/interview-readiness/internal/pipeline"

	"go.uber.org/zap"
)

type healthResponse struct {
	OK       bool              `json:"ok"`
	Model    string            `json:"model"`
	Provider string            `json:"provider"`
	Stages   []pipeline.Status `json:"stages"`
}

// handleHealth reports liveness and the configured model.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{OK: true, Provider: s.provider}
	if s.generator != nil {
		resp.Model = s.generator.Model()
	}
	if s.pipeline != nil {
		resp.Stages = s.pipeline.Describe()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyze runs one assessment from a multipart form with the fields
// mode, questionnaire and an optional resume file.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	req := pipeline.Request{
		Mode:          r.FormValue("mode"),
		Questionnaire: []byte(r.FormValue("questionnaire")),
	}

	upload, err := readUpload(r, "resume")
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	req.Resume = upload

	log := logger.WithRequest(s.logger, RequestID(r.Context()), req.Mode)
	outcome, err := s.pipeline.WithLogger(log).Run(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, outcome.Result)
}

// handleParsePDF returns the extracted text of an uploaded PDF.
func (s *Server) handleParsePDF(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.jsonResponse(w, HTTPStatus(err), map[string]string{"error": pipeline.AsError(err).Message})
		return
	}

	upload, err := readUpload(r, "file")
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), map[string]string{"error": pipeline.AsError(err).Message})
		return
	}
	if upload == nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "Missing file."})
		return
	}

	text, err := s.extractText(upload.Data)
	if err != nil {
		s.requestLogger(r).Warn("pdf extraction failed", zap.String("filename", upload.Filename), zap.Error(err))
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &pipeline.Error{
			Kind:    pipeline.KindInvalidInput,
			Message: "Resume file is too large.",
			Details: map[string]any{"maxBytes": s.maxUploadBytes},
			Cause:   err,
		}
	}
	return &pipeline.Error{Kind: pipeline.KindInvalidInput, Message: "Expected a multipart form.", Cause: err}
}

// readUpload returns nil when the field is absent.
func readUpload(r *http.Request, field string) (*pipeline.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &pipeline.Error{Kind: pipeline.KindInvalidInput, Message: "Unreadable file upload.", Cause: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &pipeline.Error{Kind: pipeline.KindInternal, Message: "Failed to read upload.", Cause: fmt.Errorf("read %s: %w", field, err)}
	}

	return &pipeline.Upload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Data:        data,
	}, nil
}

func contentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}
