// Package retriever answers product questions from the embedded AutoStream
// knowledge base. The corpus is chunked and embedded once at startup; each
// query is embedded and scored against the chunks by cosine similarity.
package retriever

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

//go:embed knowledge_base.md
var knowledgeBaseRaw string

const (
	defaultChunkSize = 500
	defaultTopK      = 3
)

type chunk struct {
	text   string
	vector []float64
}

// Index is an in-memory vector index over the knowledge base.
type Index struct {
	embedder Embedder
	chunks   []chunk
	topK     int
}

var _ contractx.Retriever = (*Index)(nil)

// NewIndex chunks and embeds the built-in knowledge base. An empty corpus is
// not an error: the index simply always returns the zero-relevance sentinel.
func NewIndex(ctx context.Context, embedder Embedder) (*Index, error) {
	return NewIndexFromCorpus(ctx, embedder, knowledgeBaseRaw)
}

// NewIndexFromCorpus builds an index over the given markdown corpus.
func NewIndexFromCorpus(ctx context.Context, embedder Embedder, corpus string) (*Index, error) {
	idx := &Index{
		embedder: embedder,
		topK:     defaultTopK,
	}

	texts := splitChunks(corpus, defaultChunkSize)
	if len(texts) == 0 {
		return idx, nil
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed knowledge base: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedded %d of %d chunks", contractx.ErrSchemaViolation, len(vectors), len(texts))
	}

	idx.chunks = make([]chunk, len(texts))
	for i, text := range texts {
		idx.chunks[i] = chunk{text: text, vector: normalize(vectors[i])}
	}
	return idx, nil
}

// Len reports the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Retrieve scores the query against every chunk and returns the top passages
// joined together, with the clamped mean similarity as the relevance score.
// An empty index yields the zero-relevance sentinel, never an error.
func (idx *Index) Retrieve(ctx context.Context, text string) (contractx.RetrievalResult, error) {
	if len(idx.chunks) == 0 {
		return contractx.RetrievalResult{}, nil
	}

	vectors, err := idx.embedder.Embed(ctx, []string{text})
	if err != nil {
		return contractx.RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return contractx.RetrievalResult{}, fmt.Errorf("%w: expected one query vector, got %d", contractx.ErrSchemaViolation, len(vectors))
	}
	query := normalize(vectors[0])

	type scored struct {
		text  string
		score float64
	}
	results := make([]scored, 0, len(idx.chunks))
	for _, c := range idx.chunks {
		results = append(results, scored{text: c.text, score: dot(query, c.vector)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	k := idx.topK
	if k > len(results) {
		k = len(results)
	}
	top := results[:k]

	sum := 0.0
	passages := make([]string, 0, k)
	for _, r := range top {
		sum += r.score
		passages = append(passages, r.text)
	}

	return contractx.RetrievalResult{
		Passage:     strings.Join(passages, "\n\n"),
		Relevance:   clamp01(sum / float64(k)),
		ResultCount: k,
	}, nil
}

// splitChunks packs paragraphs into chunks of roughly chunkSize characters,
// never splitting inside a paragraph.
func splitChunks(corpus string, chunkSize int) []string {
	paragraphs := strings.Split(strings.ReplaceAll(corpus, "\r\n", "\n"), "\n\n")

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
