// Package openaiembed adapts the OpenAI embeddings API to corpus.Embedder.
package openaiembed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/paperforge/paperforge-core/internal/corpus"
)

// Embedder wraps the OpenAI SDK behind corpus.Embedder.
type Embedder struct {
	client    sdk.Client
	model     sdk.EmbeddingModel
	dimension int
}

// New builds an Embedder authenticated with apiKey, targeting model and
// returning vectors truncated or zero-padded to dimension. baseURL may be
// empty to use the default OpenAI endpoint, or point at a compatible one.
func New(apiKey, baseURL string, model sdk.EmbeddingModel, dimension int) *Embedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Embedder{
		client:    sdk.NewClient(opts...),
		model:     model,
		dimension: dimension,
	}
}

// Dimension returns the embedding width this Embedder produces.
func (e *Embedder) Dimension() int { return e.dimension }

// ModelName returns the underlying OpenAI embedding model name.
func (e *Embedder) ModelName() string { return string(e.model) }

// Embed returns the embedding for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("openai returned no embedding")
	}
	return vectors[0], nil
}

// EmbedBatch returns one embedding per text, in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := sdk.EmbeddingNewParams{
		Model: e.model,
		Input: sdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, emb := range resp.Data {
		out[i] = toFloat32(emb.Embedding, e.dimension)
	}
	return out, nil
}

func toFloat32(input []float64, dimension int) []float32 {
	vec := make([]float32, dimension)
	for i := 0; i < len(input) && i < dimension; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}

var _ corpus.Embedder = (*Embedder)(nil)
