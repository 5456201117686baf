package cmd

import (
	"context"
	"fmt"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/ai/gemini"
	"github.com/spigell/interview-readiness/internal/ai/openai"
	"github.com/spigell/interview-readiness/internal/logger"
	"github.com/spigell/interview-readiness/internal/pipeline"
	"github.com/spigell/interview-readiness/internal/secrets"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newGenerator returns a generator whose backend is built on first use, so
// serve starts even when the model server is not up yet.
func newGenerator(cfg *Config, log *zap.Logger) (*ai.LazyGenerator, error) {
	model := cfg.model()
	params := cfg.params()

	switch cfg.AI.Provider {
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.AI.Gemini.APIKey,
			File:  cfg.AI.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return ai.NewLazyGenerator(model, func(ctx context.Context) (ai.Generator, error) {
			log.Info("creating generator", logger.ProviderFields(providerGemini, model)...)
			return gemini.NewGenerator(ctx, apiKey, model, params)
		}), nil

	case providerOpenAI:
		apiKey, err := secrets.LoadOptional(secrets.Source{
			Name:  "openai api key",
			Value: cfg.AI.OpenAI.APIKey,
			File:  cfg.AI.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		return ai.NewLazyGenerator(model, func(context.Context) (ai.Generator, error) {
			log.Info("creating generator",
				append(logger.ProviderFields(providerOpenAI, model), zap.String("base_url", cfg.AI.OpenAI.BaseURL))...)
			return openai.New(openai.Config{
				BaseURL: cfg.AI.OpenAI.BaseURL,
				APIKey:  apiKey,
				Model:   model,
				Params:  params,
				Timeout: cfg.AI.Timeout,
			}), nil
		}), nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.AI.Provider)
	}
}

// newPipeline wires the configured generator into the assessment stages.
func newPipeline(cfg *Config, generator ai.Generator, log *zap.Logger) (*pipeline.Pipeline, error) {
	aiLogger := logger.WithProvider(log, cfg.AI.Provider, generator.Model())
	assessor := ai.NewAssessor(generator, aiLogger, cfg.AI.MaxLogLength)

	stages := pipeline.DefaultStages()
	if cfg.Resume.GuardDisabled {
		const reason = "disabled by configuration"
		pipeline.DisableByName(stages, pipeline.StageResumeGate, reason)
		log.Warn("resume gate is off, any PDF will be assessed", zap.String("reason", reason))
	}

	p, err := pipeline.New(pipeline.Config{
		MinResumeHits:  cfg.Resume.MinHits,
		MaxUploadBytes: cfg.Resume.MaxUploadBytes,
	}, pipeline.Deps{
		Logger:    log,
		Evaluator: assessor,
	}, stages)
	if err != nil {
		return nil, fmt.Errorf("configuring pipeline: %w", err)
	}

	return p, nil
}

// env is what every command that assesses needs.
type env struct {
	config    *Config
	log       *zap.Logger
	generator *ai.LazyGenerator
	pipeline  *pipeline.Pipeline
}

// setup builds the logger, config, generator and pipeline shared by commands.
func setup() (*env, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	generator, err := newGenerator(config, log)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	p, err := newPipeline(config, generator, log)
	if err != nil {
		return nil, err
	}

	return &env{config: config, log: log, generator: generator, pipeline: p}, nil
}
