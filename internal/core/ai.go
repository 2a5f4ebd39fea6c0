package core

import "context"

// EmbeddingProvider turns chunk text into fixed-length vectors. The
// implementation retries rate-limit signals with backoff and returns a
// typed *EmbeddingError once retries are exhausted.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider is used only by the metadata-extraction post-pass.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
