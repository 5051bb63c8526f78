package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HuggingFaceModel is an Embedding client for the HuggingFace Inference API
// feature-extraction pipeline.
type HuggingFaceModel struct {
	client  *http.Client
	model   string
	apiKey  string
	baseURL string
}

// NewHuggingFaceModel creates a new HuggingFaceModel client. An empty baseURL
// selects the public inference endpoint. The API key is optional for public
// models.
func NewHuggingFaceModel(apiKey, modelName, baseURL string) (*HuggingFaceModel, error) {
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"
	}
	return &HuggingFaceModel{
		client:  &http.Client{},
		model:   modelName,
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// Embed generates the embedding vector for a single text.
func (m *HuggingFaceModel) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (m *HuggingFaceModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]interface{}{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+m.model, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface inference API returned status %d", resp.StatusCode)
	}

	var embeddings [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return embeddings, nil
}

var _ Embedding = (*HuggingFaceModel)(nil)
