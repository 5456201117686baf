package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/interview-readiness/internal/logger"
	"github.com/spigell/interview-readiness/internal/metrics"

	"go.uber.org/zap"
)

// ErrGeneration marks failures of the backend call itself.
var ErrGeneration = errors.New("generation failed")

// Assessor turns a candidate profile into a validated assessment using a Generator.
type Assessor struct {
	generator Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssessor(generator Generator, log *zap.Logger, maxLogLength int) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = logger.DefaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Assessor{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate runs one generation for the profile. Generator failures wrap
// ErrGeneration; rejected output satisfies IsUnprocessable.
func (a *Assessor) Evaluate(ctx context.Context, profile string) (*AssessmentResult, error) {
	if strings.TrimSpace(profile) == "" {
		return nil, errors.New("candidate profile is required")
	}

	prompt := BuildPrompt(profile)
	model := a.generator.Model()

	a.logger.Debug("generate content request",
		zap.String(logger.FieldModel, model),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	start := time.Now()
	raw, err := a.generator.GenerateContent(ctx, prompt)
	metrics.ObserveGeneration(model, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	a.logger.Debug("generate content response",
		zap.String(logger.FieldModel, model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	result, err := ParseResult(raw)
	if err != nil {
		a.logger.Warn("model output rejected",
			zap.String(logger.FieldModel, model),
			zap.Error(err),
			zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
		)
		return nil, err
	}

	return result, nil
}
