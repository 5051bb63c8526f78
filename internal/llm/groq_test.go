package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loglens/internal/apperrors"
)

func TestNewGroqRequiresAPIKey(t *testing.T) {
	_, err := NewGroq("", "llama-3.1-8b-instant", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConfiguration))
}

func TestNewGroqBuildsClient(t *testing.T) {
	g, err := NewGroq("gsk-test", "llama-3.1-8b-instant", "https://api.groq.com/openai/v1")
	require.NoError(t, err)
	assert.NotNil(t, g.client)
	assert.Equal(t, "llama-3.1-8b-instant", g.model)
}
