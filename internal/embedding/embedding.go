// Package embedding provides the embedding provider abstraction: a common
// Embed/EmbedBatch interface, one implementation per backend, and a factory
// that selects and configures a backend from the service configuration.
package embedding

import (
	"loglens/internal/apperrors"
	"loglens/internal/config"
	"loglens/pkg/logger"
)

// New creates the embedding backend for the given provider name and returns
// it together with its fixed output dimensionality.
//
// A missing credential for a credential-requiring provider is a configuration
// error. A local backend (Ollama) that fails to initialize falls back to the
// deterministic stub at the same dimensionality with a logged warning, so
// ingestion never hard-fails just because an optional local model could not
// load.
func New(name string, cfg *config.EmbeddingConfig, log *logger.Logger) (Embedding, int, error) {
	provider := Normalize(name)
	dim := Dimension(provider)

	switch provider {
	case OpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, 0, apperrors.New(apperrors.KindConfiguration,
				"OPENAI_API_KEY is required when using OpenAI embeddings")
		}
		model, err := NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, 0, err
		}
		return model, dim, nil

	case HuggingFace:
		model, err := NewHuggingFaceModel(cfg.HFAPIKey, cfg.HFModel, cfg.HFBaseURL)
		if err != nil {
			return nil, 0, err
		}
		return model, dim, nil

	case Ollama:
		model, err := NewOllamaModel(cfg.OllamaModel, cfg.OllamaURL)
		if err != nil {
			log.WithError(err).Warn("ollama embedding backend failed to initialize, falling back to simple embeddings")
			return NewSimpleModel(dim), dim, nil
		}
		return model, dim, nil

	case Simple:
		return NewSimpleModel(dim), dim, nil

	default:
		return nil, 0, apperrors.Newf(apperrors.KindValidation,
			"unsupported embedding provider: %s (supported: openai, huggingface, ollama, simple)", name)
	}
}
