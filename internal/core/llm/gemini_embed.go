package llm

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/markdave123-py/Docuchat/internal/core"
	"github.com/markdave123-py/Docuchat/internal/httpx"
	"github.com/markdave123-py/Docuchat/internal/logger"
)

type GeminiEmbedder struct {
	client     *genai.Client
	modelName  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	log        *logger.Logger

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, maxRetries int, log *logger.Logger) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &GeminiEmbedder{
		client:     cl,
		modelName:  modelName,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
		log:        log.With("component", "gemini-embedder"),
		sleep:      httpx.Sleep,
	}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts batches all texts in one request via EmbeddingBatch.
// Rate-limit responses are retried with exponential backoff and jitter;
// once attempts run out the caller gets a typed *core.EmbeddingError,
// never a nil result passed off as success.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	return g.withRetry(ctx, func() ([][]float32, error) {
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, 0, len(resp.Embeddings))
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
		return out, nil
	})
}

// withRetry drives the rate-limit backoff loop around one embedding
// call: exponential delay with jitter, capped, bounded attempts, typed
// failure once exhausted.
func (g *GeminiEmbedder) withRetry(ctx context.Context, call func() ([][]float32, error)) ([][]float32, error) {
	delay := g.baseDelay
	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRateLimited(err) || attempt == g.maxRetries {
			break
		}

		sleepFor := httpx.Jitter(delay)
		g.log.Warn("embedding rate limited, backing off",
			"attempt", attempt, "max_retries", g.maxRetries, "sleep", sleepFor.String())
		if err := g.sleep(ctx, sleepFor); err != nil {
			lastErr = err
			break
		}
		delay *= 2
		if delay > g.maxDelay {
			delay = g.maxDelay
		}
	}

	return nil, &core.EmbeddingError{Attempts: g.maxRetries, Err: lastErr}
}

// EmbedText embeds a single string, with the same retry behaviour.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, &core.EmbeddingError{Attempts: 1, Err: errors.New("empty embedding response")}
	}
	return vecs[0], nil
}

// isRateLimited recognizes throttling from both the REST and gRPC
// transports the Gemini SDK may use.
func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}
