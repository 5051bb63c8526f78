package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loglens/internal/apperrors"
	"loglens/internal/config"
	"loglens/pkg/logger"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, OpenAI, Normalize("openai"))
	assert.Equal(t, HuggingFace, Normalize("huggingface"))
	assert.Equal(t, HuggingFace, Normalize("hf"))
	assert.Equal(t, Ollama, Normalize("ollama"))
	assert.Equal(t, Simple, Normalize("simple"))
	assert.Equal(t, Simple, Normalize("fake"))
	assert.Equal(t, Provider("bogus"), Normalize("bogus"))
}

func TestDimension(t *testing.T) {
	assert.Equal(t, 1536, Dimension(OpenAI))
	assert.Equal(t, 384, Dimension(HuggingFace))
	assert.Equal(t, 768, Dimension(Ollama))
	assert.Equal(t, 384, Dimension(Simple))
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "-openai", OpenAI.Suffix())
	assert.Equal(t, "-hf", HuggingFace.Suffix())
	assert.Equal(t, "-ollama", Ollama.Suffix())
	assert.Equal(t, "-simple", Simple.Suffix())
	assert.Equal(t, "", Provider("bogus").Suffix())
}

func TestSimpleModelIsDeterministic(t *testing.T) {
	m := NewSimpleModel(384)
	ctx := context.Background()

	a, err := m.Embed(ctx, "connection refused on port 5432")
	require.NoError(t, err)
	b, err := m.Embed(ctx, "connection refused on port 5432")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := m.Embed(ctx, "a different sentence entirely")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSimpleModelProducesUnitVectors(t *testing.T) {
	m := NewSimpleModel(384)

	vec, err := m.Embed(context.Background(), "some text")
	require.NoError(t, err)
	require.Len(t, vec, 384)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestSimpleModelEmbedBatch(t *testing.T) {
	m := NewSimpleModel(8)

	vecs, err := m.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	single, err := m.Embed(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, single, vecs[1])
}

func TestFactorySimpleProvider(t *testing.T) {
	log := logger.New("test")

	model, dim, err := New("simple", &config.EmbeddingConfig{}, log)
	require.NoError(t, err)
	assert.Equal(t, 384, dim)
	assert.IsType(t, &SimpleModel{}, model)
}

func TestFactoryOpenAIRequiresKey(t *testing.T) {
	log := logger.New("test")

	_, _, err := New("openai", &config.EmbeddingConfig{OpenAIModel: "text-embedding-ada-002"}, log)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
}

func TestFactoryUnknownProvider(t *testing.T) {
	log := logger.New("test")

	_, _, err := New("bogus", &config.EmbeddingConfig{}, log)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}

func TestFactoryHuggingFaceAlias(t *testing.T) {
	log := logger.New("test")

	model, dim, err := New("hf", &config.EmbeddingConfig{HFModel: "sentence-transformers/all-MiniLM-L6-v2"}, log)
	require.NoError(t, err)
	assert.Equal(t, 384, dim)
	assert.NotNil(t, model)
}
