package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spigell/interview-readiness/internal/ai"
	"github.com/spigell/interview-readiness/internal/ai/gemini"
	"github.com/spigell/interview-readiness/internal/ai/openai"
	"github.com/spigell/interview-readiness/internal/logger"
	"github.com/spigell/interview-readiness/internal/resume"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "interview-readiness"
	envPrefix = "READINESS"

	providerOpenAI = "openai"
	providerGemini = "gemini"
)

type Config struct {
	Listen       string         `mapstructure:"listen"`
	WriteTimeout time.Duration  `mapstructure:"write-timeout"`
	AI           *AIConfig      `mapstructure:"ai"`
	Resume       *ResumeConfig  `mapstructure:"resume"`
	Metrics      *MetricsConfig `mapstructure:"metrics"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	MaxNewTokens int           `mapstructure:"max-new-tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	TopP         float32       `mapstructure:"top-p"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type OpenAIConfig struct {
	BaseURL    string `mapstructure:"base-url"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type ResumeConfig struct {
	MinHits        int   `mapstructure:"min-hits"`
	GuardDisabled  bool  `mapstructure:"guard-disabled"`
	MaxUploadBytes int64 `mapstructure:"max-upload-bytes"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "interview-readiness scores how ready a candidate is for job interviews",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is readiness.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8000")
	v.SetDefault("write-timeout", time.Duration(0))

	v.SetDefault("ai.provider", providerOpenAI)
	v.SetDefault("ai.model", "")
	params := ai.DefaultParams()
	v.SetDefault("ai.max-new-tokens", params.MaxNewTokens)
	v.SetDefault("ai.temperature", params.Temperature)
	v.SetDefault("ai.top-p", params.TopP)
	v.SetDefault("ai.max-log-length", logger.DefaultMaxLogLength)
	v.SetDefault("ai.timeout", time.Duration(0))
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.openai.base-url", openai.DefaultBaseURL)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")

	v.SetDefault("resume.min-hits", resume.DefaultMinHits)
	v.SetDefault("resume.guard-disabled", false)
	v.SetDefault("resume.max-upload-bytes", int64(10<<20))

	v.SetDefault("metrics.enabled", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads the config file. Only an explicitly requested file must exist.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("readiness")
		v.SetConfigType("yaml")
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !(file == "" && errors.As(err, &notFound)) {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values the components cannot default on their own.
func (c *Config) Validate() error {
	if c.AI == nil || c.Resume == nil || c.Metrics == nil {
		return errors.New("config sections ai, resume and metrics are required")
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case providerOpenAI:
		if c.AI.OpenAI == nil {
			c.AI.OpenAI = &OpenAIConfig{}
		}
	case providerGemini:
		if c.AI.Gemini == nil {
			c.AI.Gemini = &GeminiConfig{}
		}
	default:
		return fmt.Errorf("unsupported ai provider: %q (use %s or %s)", c.AI.Provider, providerOpenAI, providerGemini)
	}

	if err := c.params().Validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("write-timeout must not be negative, got %s", c.WriteTimeout)
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative, got %s", c.AI.Timeout)
	}
	if c.Resume.MaxUploadBytes <= 0 {
		return fmt.Errorf("resume.max-upload-bytes must be positive, got %d", c.Resume.MaxUploadBytes)
	}

	return nil
}

func (c *Config) params() ai.Params {
	return ai.Params{
		MaxNewTokens: c.AI.MaxNewTokens,
		Temperature:  c.AI.Temperature,
		TopP:         c.AI.TopP,
	}
}

// model returns the configured model or the provider default.
func (c *Config) model() string {
	if model := strings.TrimSpace(c.AI.Model); model != "" {
		return model
	}
	if c.AI.Provider == providerGemini {
		return gemini.DefaultModel
	}
	return openai.DefaultModel
}
