package retriever

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// Embedder turns texts into dense vectors. The index depends on this rather
// than a concrete SDK so tests can feed deterministic vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAIEmbedder computes embeddings through the OpenAI SDK (pointed at
// OpenRouter or api.openai.com via the client's base URL).
type OpenAIEmbedder struct {
	client *openaisdk.Client
	model  openaisdk.EmbeddingModel
}

func NewOpenAIEmbedder(client *openaisdk.Client, model string) *OpenAIEmbedder {
	m := openaisdk.EmbeddingModel(model)
	if model == "" {
		m = openaisdk.EmbeddingModelTextEmbedding3Small
	}
	return &OpenAIEmbedder{client: client, model: m}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: embeddings count=%d for inputs=%d", contractx.ErrSchemaViolation, len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index=%d out of range", contractx.ErrSchemaViolation, idx)
		}
		vectors[idx] = d.Embedding
	}
	return vectors, nil
}
