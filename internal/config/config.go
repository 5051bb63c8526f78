package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"loglens/internal/apperrors"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port           int    `yaml:"port"`           // HTTP listen port
	UploadDir      string `yaml:"uploadDir"`      // directory for stored uploads
	MaxUploadBytes int64  `yaml:"maxUploadBytes"` // upload size limit
}

// GroqConfig holds the chat model settings. Groq exposes an OpenAI-compatible
// API, so only the base URL differs from a stock OpenAI client.
type GroqConfig struct {
	APIKey  string `yaml:"-"`       // GROQ_API_KEY, never read from file
	Model   string `yaml:"model"`   // default chat model
	BaseURL string `yaml:"baseURL"` // OpenAI-compatible endpoint
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"`     // openai | huggingface | ollama | simple
	OpenAIModel  string `yaml:"openaiModel"`  // hosted embedding model
	HFModel      string `yaml:"hfModel"`      // HuggingFace feature-extraction model
	OllamaModel  string `yaml:"ollamaModel"`  // local embedding model
	OpenAIAPIKey string `yaml:"-"`            // OPENAI_API_KEY
	HFAPIKey     string `yaml:"-"`            // HF_API_KEY
	HFBaseURL    string `yaml:"hfBaseURL"`    // HuggingFace inference endpoint
	OllamaURL    string `yaml:"ollamaURL"`    // local Ollama endpoint
}

// MilvusConfig holds the vector database connection and index naming settings.
type MilvusConfig struct {
	Address   string `yaml:"address"`   // Milvus service address
	IndexName string `yaml:"indexName"` // base index (collection) name
}

// RetrievalConfig holds the chunking and retrieval parameters.
type RetrievalConfig struct {
	ChunkSize    int `yaml:"chunkSize"`    // maximum chunk length in characters
	ChunkOverlap int `yaml:"chunkOverlap"` // overlap between consecutive chunks
	BatchSize    int `yaml:"batchSize"`    // chunks embedded and upserted per batch
	TopK         int `yaml:"topK"`         // chunks retrieved per question
}

// AppConfig is the root configuration for the service.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Groq      GroqConfig      `yaml:"groq"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// DefaultIndexName is the base name used for provider-qualified indexes when
// the operator has not set one. Setting INDEX_NAME to anything else is
// treated as an explicit override and used without a provider suffix.
const DefaultIndexName = "log-interpreter-index"

// AvailableProviders enumerates the valid embedding provider choices.
var AvailableProviders = []string{"openai", "huggingface", "ollama", "simple"}

// AvailableModels enumerates the Groq chat models offered to clients.
var AvailableModels = []string{
	"llama-3.1-8b-instant",
	"llama-3.3-70b-versatile",
	"gemma2-9b-it",
}

func defaults() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           3000,
			UploadDir:      "uploads",
			MaxUploadBytes: 10 << 20,
		},
		Groq: GroqConfig{
			Model:   "llama-3.1-8b-instant",
			BaseURL: "https://api.groq.com/openai/v1",
		},
		Embedding: EmbeddingConfig{
			Provider:    "openai",
			OpenAIModel: "text-embedding-ada-002",
			HFModel:     "sentence-transformers/all-MiniLM-L6-v2",
			OllamaModel: "nomic-embed-text",
		},
		Milvus: MilvusConfig{
			Address:   "localhost:19530",
			IndexName: DefaultIndexName,
		},
		Retrieval: RetrievalConfig{
			ChunkSize:    2000,
			ChunkOverlap: 100,
			BatchSize:    50,
			TopK:         5,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order of precedence. A .env file in the
// working directory is loaded first if present.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.Server.UploadDir = v
	}

	c.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		c.Groq.Model = v
	}
	if v := os.Getenv("GROQ_BASE_URL"); v != "" {
		c.Groq.BaseURL = v
	}

	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedding.OpenAIModel = v
		c.Embedding.HFModel = v
		c.Embedding.OllamaModel = v
	}
	c.Embedding.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.Embedding.HFAPIKey = os.Getenv("HF_API_KEY")
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Embedding.OllamaURL = v
	}

	if v := os.Getenv("MILVUS_ADDRESS"); v != "" {
		c.Milvus.Address = v
	}
	if v := os.Getenv("INDEX_NAME"); v != "" {
		c.Milvus.IndexName = v
	}

	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.TopK = k
		}
	}
}

// Validate checks that the credentials required by the active configuration
// are present. Missing credentials surface as classified configuration errors
// rather than failures deep inside a provider call.
func (c *AppConfig) Validate() error {
	if c.Groq.APIKey == "" {
		return apperrors.New(apperrors.KindConfiguration,
			"GROQ_API_KEY is required; get one at https://console.groq.com/")
	}
	if c.Embedding.Provider == "openai" && c.Embedding.OpenAIAPIKey == "" {
		return apperrors.New(apperrors.KindConfiguration,
			"OPENAI_API_KEY is required when using OpenAI embeddings")
	}
	return nil
}

// IndexNameOverridden reports whether the operator explicitly set a custom
// base index name. An overridden name is used as-is, without provider
// suffixing.
func (c *AppConfig) IndexNameOverridden() bool {
	return c.Milvus.IndexName != "" && c.Milvus.IndexName != DefaultIndexName
}
