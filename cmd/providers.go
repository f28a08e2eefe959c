package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/openai"
	"github.com/spigell/interview-coach/internal/avatar"
	"github.com/spigell/interview-coach/internal/coach"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/secrets"
)

const (
	providerOpenAI = "openai"
	providerGemini = "gemini"
)

func newLogger() (*zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}
	return log, nil
}

func buildAvatar(config *AvatarConfig, log *zap.Logger, observer metrics.Observer) (*avatar.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "avatar api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Env:   "TAVUS_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	opts := []avatar.Option{
		avatar.WithDefaultReplicaID(config.ReplicaID),
		avatar.WithCallbackURL(config.CallbackURL),
		avatar.WithObserver(observer),
	}
	if config.APIURL != "" {
		opts = append(opts, avatar.WithAPIURL(config.APIURL))
	}

	client := avatar.New(log.Named("avatar"), apiKey, opts...)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	return client, nil
}

// buildGenerator returns nil without error when no API key is configured:
// the coach then serves its fallback content.
func buildGenerator(ctx context.Context, config *LLMConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		provider = providerOpenAI
	}

	envKey := map[string]string{
		providerOpenAI: "OPENAI_API_KEY",
		providerGemini: "GEMINI_API_KEY",
	}[provider]
	if envKey == "" {
		return nil, fmt.Errorf("unsupported llm provider %q (use %s or %s)", config.Provider, providerOpenAI, providerGemini)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		Value: config.APIKey,
		File:  config.APIKeyFile,
		Env:   envKey,
	})
	if err != nil {
		if strings.TrimSpace(config.APIKeyFile) != "" {
			return nil, err
		}
		log.Warn("language model is not configured, feedback and questions use built-in fallbacks", zap.Error(err))
		return nil, nil
	}

	log = logger.WithCommonFields(log.Named("llm"), provider, config.Model)

	switch provider {
	case providerGemini:
		gen, err := gemini.NewGenerator(ctx, apiKey, config.Model, log)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		gen, err := openai.NewGenerator(openai.Config{APIKey: apiKey, Model: config.Model, BaseURL: config.BaseURL}, log)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

func buildCoach(ctx context.Context, config *LLMConfig, log *zap.Logger, observer metrics.Observer) (*coach.Coach, error) {
	gen, err := buildGenerator(ctx, config, log)
	if err != nil {
		return nil, fmt.Errorf("configuring language model: %w", err)
	}
	return coach.New(gen, log.Named("coach"), observer, config.MaxLogLength), nil
}

var errUnsupportedDocument = errors.New("unsupported document type")

// readDocument returns the text of a plain-text file, or the file name of a
// PDF, mirroring what the upload page stores.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is("application/pdf"):
		return filepath.Base(path), nil
	case detected.Is("text/plain"):
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("%s is empty", path)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%s: %w %s", path, errUnsupportedDocument, detected.String())
	}
}
