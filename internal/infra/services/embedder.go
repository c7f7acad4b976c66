package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/sashabaranov/go-openai"
)

const defaultEmbeddingDims = 512

// TermFrequencyEmbedder hashes content tokens into a fixed-size, L2-normalized
// term-frequency vector. Each document's vector depends only on its own text.
type TermFrequencyEmbedder struct {
	Dims int
}

func NewTermFrequencyEmbedder(dims int) *TermFrequencyEmbedder {
	if dims <= 0 {
		dims = defaultEmbeddingDims
	}
	return &TermFrequencyEmbedder{Dims: dims}
}

func (e *TermFrequencyEmbedder) Name() string {
	return "term-frequency"
}

func (e *TermFrequencyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vector := make([]float64, e.Dims)
	for _, token := range contentTokens(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vector[h.Sum32()%uint32(e.Dims)]++
	}
	return normalize(vector), nil
}

// OpenAIEmbedder uses a hosted embedding model.
type OpenAIEmbedder struct {
	Client *openai.Client
	Model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, baseURL string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{Client: openai.NewClientWithConfig(cfg), Model: openai.SmallEmbedding3}
}

func (e *OpenAIEmbedder) Name() string {
	return "openai:" + string(e.Model)
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.Client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("create embedding: empty response")
	}
	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return normalize(vector), nil
}

func normalize(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] /= norm
	}
	return vector
}

// cosine returns 0 for mismatched or zero vectors.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
