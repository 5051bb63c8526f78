package embedding

import "context"

// Embedding is the interface every embedding backend implements.
type Embedding interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider identifies an embedding backend. The set is closed: adding a
// backend means adding a constant and a case to the factory, not extending a
// string comparison somewhere else.
type Provider string

const (
	OpenAI      Provider = "openai"      // hosted OpenAI embeddings, 1536 dimensions
	HuggingFace Provider = "huggingface" // HuggingFace feature-extraction, 384 dimensions
	Ollama      Provider = "ollama"      // local Ollama model, 768 dimensions
	Simple      Provider = "simple"      // deterministic stub for offline testing, 384 dimensions
)

// Normalize maps user-supplied provider names, including the accepted
// aliases, onto the canonical Provider constants.
func Normalize(name string) Provider {
	switch name {
	case "openai":
		return OpenAI
	case "huggingface", "hf":
		return HuggingFace
	case "ollama":
		return Ollama
	case "simple", "fake":
		return Simple
	default:
		return Provider(name)
	}
}

// Dimension returns the fixed output dimensionality of a provider. The vector
// index for a provider must be created with exactly this dimension.
func Dimension(p Provider) int {
	switch p {
	case OpenAI:
		return 1536
	case Ollama:
		return 768
	default:
		// HuggingFace all-MiniLM-L6-v2 and the stub provider.
		return 384
	}
}

// Suffix returns the index-name suffix used to namespace indexes per
// provider, preventing dimension clashes between providers sharing a base
// index name.
func (p Provider) Suffix() string {
	switch p {
	case OpenAI:
		return "-openai"
	case HuggingFace:
		return "-hf"
	case Ollama:
		return "-ollama"
	case Simple:
		return "-simple"
	default:
		return ""
	}
}
