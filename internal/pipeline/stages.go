package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/metrics"
	"github.com/spigell/interview-readiness/internal/profile"
	"github.com/spigell/interview-readiness/internal/resume"

	"go.uber.org/zap"
)

const (
	StageDecodeInput     = "decode_input"
	StageExtractResume   = "extract_resume"
	StageResumeGate      = "resume_gate"
	StageRequiredAnswers = "required_answers"
	StageBuildProfile    = "build_profile"
	StageEvaluate        = "evaluate"
)

// switchable implements Disable/IsEnabled for stages that may be turned off.
type switchable struct {
	disabled bool
	reason   string
}

func (s *switchable) Disable(reason string) {
	s.disabled = true
	s.reason = reason
}

func (s *switchable) IsEnabled() bool { return !s.disabled }

// required is embedded by stages that can never be turned off.
type required struct{}

func (required) Disable(string) {}

func (required) IsEnabled() bool { return true }

type decodeInputStage struct {
	required
	maxUploadBytes int64
}

// NewDecodeInput creates the stage that validates mode, questionnaire and upload.
func NewDecodeInput() Stage {
	return &decodeInputStage{}
}

func (s *decodeInputStage) Name() string { return StageDecodeInput }

func (s *decodeInputStage) Validate(cfg *Config) error {
	if cfg.MaxUploadBytes < 0 {
		return fmt.Errorf("max upload bytes must not be negative, got %d", cfg.MaxUploadBytes)
	}
	s.maxUploadBytes = cfg.MaxUploadBytes
	return nil
}

func (s *decodeInputStage) Apply(_ context.Context, _ Deps, st *State) error {
	mode, err := profile.ParseMode(st.Request.Mode)
	if err != nil {
		return invalidInput("Invalid mode. Use 'resume' or 'questions'.", err)
	}
	st.Mode = mode

	q, err := profile.Decode(st.Request.Questionnaire)
	if err != nil {
		return invalidInput("Invalid questionnaire JSON.", err)
	}
	if err := q.Validate(); err != nil {
		return invalidInput("Missing: roleApplyingFor.", err)
	}
	st.Questionnaire = q

	if mode != profile.ModeResume {
		return nil
	}

	upload := st.Request.Resume
	if upload == nil {
		return invalidInput("Missing resume file.", nil)
	}
	if !strings.EqualFold(filepath.Ext(upload.Filename), ".pdf") {
		return invalidInput("Only .pdf files are allowed.", nil)
	}
	if !strings.Contains(strings.ToLower(upload.ContentType), "pdf") {
		return invalidInput("File must be a PDF (content-type).", nil)
	}
	if s.maxUploadBytes > 0 && int64(len(upload.Data)) > s.maxUploadBytes {
		e := invalidInput("Resume file is too large.", nil)
		e.Details = map[string]any{"maxBytes": s.maxUploadBytes}
		return e
	}

	return nil
}

func (s *decodeInputStage) Status() Status {
	details := map[string]string{}
	if s.maxUploadBytes > 0 {
		details["max_upload_bytes"] = strconv.FormatInt(s.maxUploadBytes, 10)
	}
	return Status{Name: s.Name(), Enabled: true, Details: details}
}

type extractResumeStage struct {
	required
}

// NewExtractResume creates the stage that reads text from the uploaded PDF.
func NewExtractResume() Stage {
	return &extractResumeStage{}
}

func (s *extractResumeStage) Name() string { return StageExtractResume }

func (s *extractResumeStage) Validate(*Config) error { return nil }

func (s *extractResumeStage) Apply(_ context.Context, deps Deps, st *State) error {
	if st.Mode != profile.ModeResume {
		return nil
	}

	text, err := deps.ExtractText(st.Request.Resume.Data)
	if err != nil {
		return internal(fmt.Errorf("extract resume text: %w", err))
	}
	st.ResumeText = text

	deps.Logger.Debug("resume text extracted", zap.Int("resume_chars", len([]rune(text))))
	return nil
}

type resumeGateStage struct {
	switchable
	minHits int
}

// NewResumeGate creates the stage that rejects PDFs that do not look like a résumé.
func NewResumeGate() Stage {
	return &resumeGateStage{}
}

func (s *resumeGateStage) Name() string { return StageResumeGate }

func (s *resumeGateStage) Validate(cfg *Config) error {
	s.minHits = cfg.MinResumeHits
	if s.minHits <= 0 {
		s.minHits = resume.DefaultMinHits
	}
	if s.minHits > len(resume.Keywords) {
		return fmt.Errorf("min hits %d exceeds the %d known keywords", s.minHits, len(resume.Keywords))
	}
	return nil
}

func (s *resumeGateStage) Apply(_ context.Context, deps Deps, st *State) error {
	if st.Mode != profile.ModeResume {
		return nil
	}

	check := resume.Inspect(st.ResumeText, s.minHits)
	st.ResumeCheck = &check
	metrics.ObserveResumeGate(check.IsResume)

	deps.Logger.Debug("resume gate verdict",
		zap.Bool("is_resume", check.IsResume),
		zap.Int("hits", check.Hits),
		zap.Strings("matched", check.Matched),
	)

	if check.IsResume {
		return nil
	}

	return &Error{
		Kind:    KindResumeRejected,
		Message: "PDF rejected: not detected as a resume. " + check.Reason,
		Details: map[string]any{
			"hits":    check.Hits,
			"matched": check.Matched,
			"reason":  check.Reason,
		},
	}
}

func (s *resumeGateStage) Status() Status {
	status := Status{Name: s.Name(), Enabled: s.IsEnabled(), Reason: s.reason}
	if s.minHits > 0 {
		status.Details = map[string]string{"min_hits": strconv.Itoa(s.minHits)}
	}
	return status
}

type requiredAnswersStage struct {
	required
}

// NewRequiredAnswers creates the stage that enforces the mandatory answers in questions mode.
func NewRequiredAnswers() Stage {
	return &requiredAnswersStage{}
}

func (s *requiredAnswersStage) Name() string { return StageRequiredAnswers }

func (s *requiredAnswersStage) Validate(*Config) error { return nil }

func (s *requiredAnswersStage) Apply(_ context.Context, _ Deps, st *State) error {
	if st.Mode != profile.ModeQuestions {
		return nil
	}

	missing := st.Questionnaire.MissingRequired()
	if len(missing) == 0 {
		return nil
	}

	e := invalidInput("Missing required answers: "+strings.Join(missing, ", "), nil)
	e.Details = map[string]any{"missing": missing}
	return e
}

type buildProfileStage struct {
	required
}

// NewBuildProfile creates the stage that renders the candidate profile.
func NewBuildProfile() Stage {
	return &buildProfileStage{}
}

func (s *buildProfileStage) Name() string { return StageBuildProfile }

func (s *buildProfileStage) Validate(*Config) error { return nil }

func (s *buildProfileStage) Apply(_ context.Context, _ Deps, st *State) error {
	st.Profile = profile.Build(st.Mode, st.Questionnaire, st.ResumeText)
	return nil
}

type evaluateStage struct {
	required
}

// NewEvaluate creates the stage that asks the model for an assessment.
func NewEvaluate() Stage {
	return &evaluateStage{}
}

func (s *evaluateStage) Name() string { return StageEvaluate }

func (s *evaluateStage) Validate(*Config) error { return nil }

func (s *evaluateStage) Apply(ctx context.Context, deps Deps, st *State) error {
	result, err := deps.Evaluator.Evaluate(ctx, st.Profile)
	if err == nil {
		st.Result = result
		return nil
	}

	if !ai.IsUnprocessable(err) {
		return internal(err)
	}

	return &Error{
		Kind:    KindGenerationUnprocessable,
		Message: "AI output was not valid JSON.",
		Details: unprocessableDetails(err),
		Cause:   err,
	}
}

func unprocessableDetails(err error) map[string]any {
	var syntaxErr *ai.SyntaxError
	var schemaErr *ai.SchemaError

	switch {
	case errors.Is(err, ai.ErrNoJSONObject):
		return map[string]any{"stage": "locate", "error": err.Error()}
	case errors.As(err, &syntaxErr):
		return map[string]any{"stage": "parse", "error": syntaxErr.Cause.Error()}
	case errors.As(err, &schemaErr):
		return map[string]any{"stage": "schema", "errors": schemaErr.Errors}
	default:
		return nil
	}
}
