package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestAssessorEvaluate(t *testing.T) {
	stub := &stubGenerator{response: "Evaluation follows.\n" + canonicalResult}
	assessor := NewAssessor(stub, zap.NewNop(), 0)

	result, err := assessor.Evaluate(context.Background(), "MODE: questions")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ReadinessLevel != LevelAlmostReady {
		t.Fatalf("unexpected level %q", result.ReadinessLevel)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one generation, got %d", stub.calls)
	}
	if !strings.Contains(stub.lastPrompt, "CANDIDATE PROFILE:\nMODE: questions\n") {
		t.Fatalf("expected profile in prompt, got %s", stub.lastPrompt)
	}
}

func TestAssessorDoesNotRetryRejectedOutput(t *testing.T) {
	stub := &stubGenerator{response: `{"overallScore": 150}`}
	assessor := NewAssessor(stub, zap.NewNop(), 0)

	_, err := assessor.Evaluate(context.Background(), "profile")
	if !IsUnprocessable(err) {
		t.Fatalf("expected unprocessable error, got %v", err)
	}
	if errors.Is(err, ErrGeneration) {
		t.Fatalf("rejected output must not look like a generation failure")
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one generation, got %d", stub.calls)
	}
}

func TestAssessorBlankOutputIsUnprocessable(t *testing.T) {
	stub := &stubGenerator{response: ""}
	assessor := NewAssessor(stub, zap.NewNop(), 0)

	_, err := assessor.Evaluate(context.Background(), "profile")
	if !errors.Is(err, ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}
	if errors.Is(err, ErrGeneration) {
		t.Fatalf("blank output must not look like a generation failure")
	}
}

func TestAssessorWrapsGeneratorErrors(t *testing.T) {
	backendErr := errors.New("model unavailable")
	stub := &stubGenerator{err: backendErr}
	assessor := NewAssessor(stub, zap.NewNop(), 0)

	_, err := assessor.Evaluate(context.Background(), "profile")
	if !errors.Is(err, ErrGeneration) || !errors.Is(err, backendErr) {
		t.Fatalf("expected wrapped generation error, got %v", err)
	}
	if IsUnprocessable(err) {
		t.Fatalf("generation failures are not unprocessable")
	}
}

func TestAssessorRejectsEmptyProfile(t *testing.T) {
	stub := &stubGenerator{response: canonicalResult}

	if _, err := NewAssessor(stub, nil, 0).Evaluate(context.Background(), "  \n"); err == nil {
		t.Fatalf("expected error for empty profile")
	}
	if stub.calls != 0 {
		t.Fatalf("generator must not be called")
	}
}

func TestAssessorTruncatesLogPreviews(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: canonicalResult}
	assessor := NewAssessor(stub, zap.New(core), 10)

	if _, err := assessor.Evaluate(context.Background(), "profile"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	requests := observed.FilterMessage("generate content request").All()
	if len(requests) != 1 {
		t.Fatalf("expected one request log, got %d", len(requests))
	}
	preview, _ := requests[0].ContextMap()["prompt_preview"].(string)
	if preview != "You are an..." {
		t.Fatalf("unexpected prompt preview %q", preview)
	}
}
