package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/outreach-crafter/internal/ai"
	"github.com/spigell/outreach-crafter/internal/ai/gemini"
	"github.com/spigell/outreach-crafter/internal/backend"
	"github.com/spigell/outreach-crafter/internal/logger"
	"github.com/spigell/outreach-crafter/internal/scrape"
	"github.com/spigell/outreach-crafter/internal/secrets"
)

const (
	providerBackend = "backend"
	providerGemini  = "gemini"

	defaultBackendTimeout = 2 * time.Minute
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultMaxLogLength   = 200

	geminiAPIKeyEnv = "GEMINI_API_KEY"
)

type Config struct {
	BaseURL   string         `mapstructure:"base-url" validate:"omitempty,url"`
	Provider  string         `mapstructure:"provider" validate:"required,oneof=backend gemini"`
	Backend   *BackendConfig `mapstructure:"backend"`
	Gemini    *GeminiConfig  `mapstructure:"gemini"`
	ExportDir string         `mapstructure:"export-dir" validate:"omitempty,dir"`
}

type BackendConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	config.Provider = strings.ToLower(strings.TrimSpace(config.Provider))
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the config before any client is built.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Provider == providerBackend && strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("invalid config: base-url is required for the backend provider (set base-url or OUTREACH_BASE_URL)")
	}
	return nil
}

// newServices builds the service clients of the configured provider.
func newServices(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Services, error) {
	switch cfg.Provider {
	case providerBackend:
		var timeout time.Duration
		maxLog := 0
		if cfg.Backend != nil {
			timeout = cfg.Backend.Timeout
			maxLog = cfg.Backend.MaxLogLength
		}

		client, err := backend.New(logger.WithCommonFields(log, providerBackend, cfg.BaseURL), cfg.BaseURL, timeout)
		if err != nil {
			return nil, err
		}
		if maxLog > 0 {
			client.MaxLogLength = maxLog
		}
		return client, nil

	case providerGemini:
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gc.APIKeyFile,
			Value: gc.APIKey,
			Env:   geminiAPIKeyEnv,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}

		genLogger := logger.WithCommonFields(log, providerGemini, gc.Model)
		genLogger.Debug("gemini api key loaded", zap.String("key", secrets.Fingerprint(apiKey)))

		generator, err := gemini.NewGenerator(ctx, apiKey, gc.Model, gc.MaxLogLength, genLogger)
		if err != nil {
			return nil, err
		}

		return gemini.NewProvider(generator, scrape.New(genLogger), genLogger), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
