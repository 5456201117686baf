package ai

import (
	"context"
	"errors"
	"fmt"
)

// ReadinessLevel is the coarse readiness verdict.
type ReadinessLevel string

const (
	LevelBeginner       ReadinessLevel = "Beginner"
	LevelEmerging       ReadinessLevel = "Emerging"
	LevelAlmostReady    ReadinessLevel = "Almost Ready"
	LevelInterviewReady ReadinessLevel = "Interview-Ready"
)

// ReadinessLevels lists every level from least to most ready.
var ReadinessLevels = []ReadinessLevel{
	LevelBeginner,
	LevelEmerging,
	LevelAlmostReady,
	LevelInterviewReady,
}

// Rank returns the position of l in ReadinessLevels, or -1 when unknown.
func (l ReadinessLevel) Rank() int {
	for i, level := range ReadinessLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Dimensions holds the 0-100 sub-scores.
type Dimensions struct {
	Technical     int `json:"technical"`
	Resume        int `json:"resume"`
	Communication int `json:"communication"`
	Portfolio     int `json:"portfolio"`
}

// AssessmentResult is the validated model verdict returned to callers.
type AssessmentResult struct {
	OverallScore    int            `json:"overallScore"`
	ReadinessLevel  ReadinessLevel `json:"readinessLevel"`
	Dimensions      Dimensions     `json:"dimensions"`
	Strengths       []string       `json:"strengths"`
	Gaps            []string       `json:"gaps"`
	TimelineSummary string         `json:"timelineSummary"`
	NextSteps       []string       `json:"nextSteps"`
}

// Evaluator assesses a candidate profile.
type Evaluator interface {
	Evaluate(ctx context.Context, profile string) (*AssessmentResult, error)
}

// Generator produces a completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Params are the sampling settings passed to every backend.
type Params struct {
	MaxNewTokens int
	Temperature  float32
	TopP         float32
}

// DefaultParams returns the settings the prompt was tuned with.
func DefaultParams() Params {
	return Params{
		MaxNewTokens: 240,
		Temperature:  0.7,
		TopP:         0.9,
	}
}

// WithDefaults fills zero fields from DefaultParams.
func (p Params) WithDefaults() Params {
	defaults := DefaultParams()
	if p.MaxNewTokens == 0 {
		p.MaxNewTokens = defaults.MaxNewTokens
	}
	if p.Temperature == 0 {
		p.Temperature = defaults.Temperature
	}
	if p.TopP == 0 {
		p.TopP = defaults.TopP
	}
	return p
}

// Validate rejects settings that would disable sampling or the token budget.
func (p Params) Validate() error {
	var errs []error
	if p.MaxNewTokens <= 0 {
		errs = append(errs, fmt.Errorf("max new tokens must be positive, got %d", p.MaxNewTokens))
	}
	if p.Temperature <= 0 {
		errs = append(errs, fmt.Errorf("temperature must be positive, got %g", p.Temperature))
	}
	if p.TopP <= 0 || p.TopP > 1 {
		errs = append(errs, fmt.Errorf("top-p must be in (0, 1], got %g", p.TopP))
	}
	return errors.Join(errs...)
}
