package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEvaluator struct {
	result *ai.AssessmentResult
	err    error
}

func (s *stubEvaluator) Evaluate(context.Context, string) (*ai.AssessmentResult, error) {
	return s.result, s.err
}

type stubGenerator string

func (g stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (g stubGenerator) Model() string { return string(g) }

const questionnaire = `{"roleApplyingFor": "Backend Engineer", "timeline": "< 1 month",
	"q1_intro": "a", "q3_proudest": "c", "q4_challenge": "d", "q9_3to5years": "i"}`

var resumeText = "Summary: engineer. Experience: Acme 2019-2024. Education: BSc. " +
	"Skills: Go, SQL. Projects: billing. " + strings.Repeat("more words ", 50)

func sampleResult() *ai.AssessmentResult {
	return &ai.AssessmentResult{
		OverallScore:    81,
		ReadinessLevel:  ai.LevelInterviewReady,
		Dimensions:      ai.Dimensions{Technical: 85, Resume: 80, Communication: 78, Portfolio: 70},
		Strengths:       []string{"Go"},
		Gaps:            []string{},
		TimelineSummary: "Ready now.",
		NextSteps:       []string{"Apply"},
	}
}

func newTestServer(t *testing.T, eval ai.Evaluator, extract func([]byte) (string, error), cfg Config) *Server {
	t.Helper()
	p, err := pipeline.New(pipeline.Config{MinResumeHits: 3, MaxUploadBytes: cfg.MaxUploadBytes}, pipeline.Deps{
		Evaluator:   eval,
		ExtractText: extract,
	}, pipeline.DefaultStages())
	require.NoError(t, err)

	cfg.Provider = "openai"
	return New(cfg, Deps{
		Pipeline:    p,
		Generator:   stubGenerator("Qwen/Qwen2.5-0.5B-Instruct"),
		ExtractText: extract,
		Logger:      zap.NewNop(),
	})
}

func textExtractor(text string) func([]byte) (string, error) {
	return func([]byte) (string, error) { return text, nil }
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyzeQuestions(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, nil, Config{})

	rec := serve(s, multipartRequest(t, "/analyze", map[string]string{
		"mode":          "questions",
		"questionnaire": questionnaire,
	}, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ai.AssessmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *sampleResult(), got)
}

func TestAnalyzeResume(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, textExtractor(resumeText), Config{MaxUploadBytes: 1 << 20})

	rec := serve(s, multipartRequest(t, "/analyze", map[string]string{
		"mode":          "resume",
		"questionnaire": `{"roleApplyingFor": "Backend Engineer"}`,
	}, &filePart{field: "resume", filename: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF-1.7")}))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		eval    *stubEvaluator
		extract func([]byte) (string, error)
		fields  map[string]string
		file    *filePart
		status  int
		kind    pipeline.Kind
	}{
		{
			name:   "invalid mode",
			eval:   &stubEvaluator{result: sampleResult()},
			fields: map[string]string{"mode": "other", "questionnaire": questionnaire},
			status: http.StatusBadRequest,
			kind:   pipeline.KindInvalidInput,
		},
		{
			name:    "not a resume",
			eval:    &stubEvaluator{result: sampleResult()},
			extract: textExtractor("Invoice #42. Amount due: 100 EUR."),
			fields:  map[string]string{"mode": "resume", "questionnaire": questionnaire},
			file:    &filePart{field: "resume", filename: "invoice.pdf", contentType: "application/pdf", data: []byte("%PDF")},
			status:  http.StatusUnprocessableEntity,
			kind:    pipeline.KindResumeRejected,
		},
		{
			name:   "model output not json",
			eval:   &stubEvaluator{err: ai.ErrNoJSONObject},
			fields: map[string]string{"mode": "questions", "questionnaire": questionnaire},
			status: http.StatusUnprocessableEntity,
			kind:   pipeline.KindGenerationUnprocessable,
		},
		{
			name:   "backend down",
			eval:   &stubEvaluator{err: errors.Join(ai.ErrGeneration, errors.New("dial tcp: connection refused"))},
			fields: map[string]string{"mode": "questions", "questionnaire": questionnaire},
			status: http.StatusInternalServerError,
			kind:   pipeline.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.eval, tt.extract, Config{MaxUploadBytes: 1 << 20})

			rec := serve(s, multipartRequest(t, "/analyze", tt.fields, tt.file))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, string(tt.kind), body.Error)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
			assert.NotContains(t, rec.Body.String(), "connection refused", "causes stay in logs")
		})
	}
}

func TestAnalyzeRejectsOversizedBody(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, textExtractor(resumeText), Config{MaxUploadBytes: 16})

	rec := serve(s, multipartRequest(t, "/analyze", map[string]string{
		"mode":          "resume",
		"questionnaire": questionnaire,
	}, &filePart{field: "resume", filename: "cv.pdf", contentType: "application/pdf", data: make([]byte, 2<<20)}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pipeline.KindInvalidInput), decodeError(t, rec).Error)
}

func TestAnalyzeRequiresMultipart(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, nil, Config{})

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"mode":"questions"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Expected a multipart form.", decodeError(t, rec).Message)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, nil, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	assert.Equal(t, "trace-123", serve(s, req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	generated := serve(s, req).Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, nil, Config{})

	rec := serve(s, httptest.NewRequest(http.MethodOptions, "/analyze", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{result: sampleResult()}, nil, Config{})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "Qwen/Qwen2.5-0.5B-Instruct", body.Model)
	assert.Equal(t, "openai", body.Provider)
	assert.Len(t, body.Stages, len(pipeline.DefaultStages()))
}

func TestParsePDF(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{}, textExtractor("Jane Doe\nExperience"), Config{})

	rec := serve(s, multipartRequest(t, "/parse-pdf", nil,
		&filePart{field: "file", filename: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF")}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text": "Jane Doe\nExperience"}`, rec.Body.String())
}

func TestParsePDFErrors(t *testing.T) {
	failing := func([]byte) (string, error) { return "", errors.New("malformed PDF") }
	s := newTestServer(t, &stubEvaluator{}, failing, Config{})

	rec := serve(s, multipartRequest(t, "/parse-pdf", map[string]string{"other": "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Missing file."}`, rec.Body.String())

	rec = serve(s, multipartRequest(t, "/parse-pdf", nil,
		&filePart{field: "file", filename: "cv.pdf", contentType: "application/pdf", data: []byte("junk")}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "malformed PDF"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{}, nil, Config{})
	assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	s = newTestServer(t, &stubEvaluator{}, nil, Config{MetricsEnabled: true})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(&pipeline.Error{Kind: pipeline.KindResumeRejected}))
}

func TestWriteTimeout(t *testing.T) {
	s := newTestServer(t, &stubEvaluator{}, nil, Config{})
	assert.Zero(t, s.httpServer.WriteTimeout, "a slow generation keeps its response")

	s = newTestServer(t, &stubEvaluator{}, nil, Config{WriteTimeout: 10 * time.Minute})
	assert.Equal(t, 10*time.Minute, s.httpServer.WriteTimeout)
}
