// Package llm provides the chat model client used to answer questions. Groq
// exposes an OpenAI-compatible API, so the client is a thin wrapper over the
// OpenAI SDK pointed at the Groq endpoint.
package llm

import (
	"context"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"loglens/internal/apperrors"
	"loglens/internal/rag/interfaces"
)

// answerTemperature keeps generation close to the retrieved context.
const answerTemperature = 0.1

// Groq is an LLM client for the Groq chat-completion API.
type Groq struct {
	client *openai.Client
	model  string
}

// NewGroq creates a Groq client for the given model. The API key is required.
func NewGroq(apiKey, model, baseURL string) (*Groq, error) {
	if apiKey == "" {
		return nil, apperrors.New(apperrors.KindConfiguration,
			"GROQ_API_KEY is required; get one at https://console.groq.com/")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Groq{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Generate sends the prompt as a single chat turn and returns the model's
// answer. Transport and authentication failures are classified as inference
// errors.
func (g *Groq) Generate(ctx context.Context, prompt string) (string, error) {
	temp := float32(answerTemperature)
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: &temp,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInference,
			"chat completion request failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.KindInference,
			"chat model returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// compile-time check to ensure Groq implements the LLM interface
var _ interfaces.LLM = (*Groq)(nil)
