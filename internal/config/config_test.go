package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loglens/internal/apperrors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "UPLOAD_DIR", "GROQ_API_KEY", "GROQ_MODEL", "GROQ_BASE_URL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "OPENAI_API_KEY", "HF_API_KEY",
		"OLLAMA_URL", "MILVUS_ADDRESS", "INDEX_NAME", "RETRIEVAL_TOP_K",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Groq.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Groq.BaseURL)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, DefaultIndexName, cfg.Milvus.IndexName)
	assert.Equal(t, 2000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 100, cfg.Retrieval.ChunkOverlap)
	assert.Equal(t, 50, cfg.Retrieval.BatchSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("EMBEDDING_PROVIDER", "huggingface")
	t.Setenv("MILVUS_ADDRESS", "milvus:19530")
	t.Setenv("INDEX_NAME", "custom-index")
	t.Setenv("RETRIEVAL_TOP_K", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gsk-test", cfg.Groq.APIKey)
	assert.Equal(t, "huggingface", cfg.Embedding.Provider)
	assert.Equal(t, "milvus:19530", cfg.Milvus.Address)
	assert.Equal(t, "custom-index", cfg.Milvus.IndexName)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.True(t, cfg.IndexNameOverridden())
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 4000
retrieval:
  chunkSize: 1000
  chunkOverlap: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 50, cfg.Retrieval.ChunkOverlap)
	// untouched sections keep their defaults
	assert.Equal(t, "openai", cfg.Embedding.Provider)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRequiresGroqKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
}

func TestValidateRequiresOpenAIKeyForOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))

	cfg.Embedding.Provider = "simple"
	assert.NoError(t, cfg.Validate())
}

func TestIndexNameOverridden(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.IndexNameOverridden())

	cfg.Milvus.IndexName = "my-index"
	assert.True(t, cfg.IndexNameOverridden())
}
