// Package pipeline runs an assessment request through its stages: input
// decoding, résumé extraction and gating, profile building and evaluation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/logger"
	"github.com/spigell/interview-readiness/internal/metrics"
	"github.com/spigell/interview-readiness/internal/profile"
	"github.com/spigell/interview-readiness/internal/resume"

	"go.uber.org/zap"
)

// Stage is a single step of an assessment.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, st *State) error
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Logger      *zap.Logger
	Evaluator   ai.Evaluator
	ExtractText func(data []byte) (string, error)
}

// Config contains settings consumed by the stages.
type Config struct {
	MinResumeHits  int
	MaxUploadBytes int64
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by stages that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Upload is a file received with a request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request is one assessment request as received from a transport.
type Request struct {
	Mode          string
	Questionnaire []byte
	Resume        *Upload
}

// State carries the data produced by stages for a single request.
type State struct {
	Request Request

	Mode          profile.Mode
	Questionnaire *profile.Questionnaire
	ResumeText    string
	ResumeCheck   *resume.Check
	Profile       string
	Result        *ai.AssessmentResult
}

// Outcome is the product of a successful run.
type Outcome struct {
	Result      *ai.AssessmentResult
	ResumeCheck *resume.Check
}

// Pipeline executes stages in order. Stages are configured once and then
// shared read-only, so one Pipeline serves concurrent requests.
type Pipeline struct {
	cfg    Config
	deps   Deps
	stages []Stage
}

// DefaultStages returns the standard assessment stages in execution order.
func DefaultStages() []Stage {
	return []Stage{
		NewDecodeInput(),
		NewExtractResume(),
		NewResumeGate(),
		NewRequiredAnswers(),
		NewBuildProfile(),
		NewEvaluate(),
	}
}

// DisableByName marks a stage with the provided name as disabled while keeping it in the list.
func DisableByName(stages []Stage, name, reason string) bool {
	found := false
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
			found = true
		}
	}
	return found
}

// New validates the enabled stages against cfg and deps.
func New(cfg Config, deps Deps, stages []Stage) (*Pipeline, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ExtractText == nil {
		deps.ExtractText = resume.ExtractText
	}
	if deps.Evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	if len(stages) == 0 {
		return nil, errors.New("at least one stage is required")
	}

	for _, stage := range stages {
		if !stage.IsEnabled() {
			continue
		}
		if err := stage.Validate(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}

	return &Pipeline{cfg: cfg, deps: deps, stages: stages}, nil
}

// WithLogger returns a copy of the pipeline logging to l.
func (p *Pipeline) WithLogger(l *zap.Logger) *Pipeline {
	clone := *p
	clone.deps.Logger = logger.WithFields(l)
	return &clone
}

// Run executes all enabled stages for the request. Every returned error is a *Error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	st := &State{Request: req}
	started := time.Now()

	for _, stage := range p.stages {
		log := p.deps.Logger.With(zap.String(logger.FieldStage, stage.Name()))
		if !stage.IsEnabled() {
			log.Debug("stage disabled", zap.String("reason", stageReason(stage)))
			continue
		}

		stageStart := time.Now()
		err := stage.Apply(ctx, p.deps, st)
		elapsed := time.Since(stageStart)
		metrics.ObserveStage(stage.Name(), elapsed)

		if err != nil {
			pe := AsError(err)
			metrics.ObserveAssessment(string(st.Mode), string(pe.Kind))
			fields := []zap.Field{zap.String("kind", string(pe.Kind)), zap.Duration("elapsed", elapsed), zap.Error(err)}
			if pe.Kind == KindInternal {
				log.Error("stage failed", fields...)
			} else {
				log.Info("stage rejected request", fields...)
			}
			return nil, pe
		}

		log.Debug("stage done", zap.Duration("elapsed", elapsed))
	}

	if st.Result == nil {
		err := internal(errors.New("pipeline finished without a result"))
		metrics.ObserveAssessment(string(st.Mode), string(err.Kind))
		return nil, err
	}

	metrics.ObserveAssessment(string(st.Mode), "ok")
	p.deps.Logger.Info("assessment completed",
		zap.String(logger.FieldMode, string(st.Mode)),
		zap.Int("overall_score", st.Result.OverallScore),
		zap.String("readiness_level", string(st.Result.ReadinessLevel)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &Outcome{Result: st.Result, ResumeCheck: st.ResumeCheck}, nil
}

// Describe returns status entries for the pipeline stages.
func (p *Pipeline) Describe() []Status {
	statuses := make([]Status, 0, len(p.stages))
	for _, stage := range p.stages {
		if reporter, ok := stage.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    stage.Name(),
			Enabled: stage.IsEnabled(),
		})
	}
	return statuses
}

func stageReason(stage Stage) string {
	if reporter, ok := stage.(statusProvider); ok {
		return strings.TrimSpace(reporter.Status().Reason)
	}
	return ""
}
