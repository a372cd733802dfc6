// Package demoembed is a hash-based corpus.Embedder with no external
// dependency, used by the CLI when no embedding API key is configured. It
// trades semantic quality for determinism: the same text always produces
// the same vector, which is enough to exercise vector search end to end
// without a network call.
package demoembed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/paperforge/paperforge-core/internal/corpus"
)

const dimension = 256

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// Embedder is a deterministic, dependency-free corpus.Embedder.
type Embedder struct{}

// New builds a demo Embedder.
func New() *Embedder { return &Embedder{} }

// Dimension returns the fixed width of vectors this Embedder produces.
func (e *Embedder) Dimension() int { return dimension }

// ModelName identifies this as the non-semantic demo embedder.
func (e *Embedder) ModelName() string { return "demo-hash-256" }

// Embed returns a deterministic, L2-normalized vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, dimension), nil
	}

	vec := make([]float32, dimension)
	for _, tok := range strings.Fields(strings.ToLower(trimmed)) {
		vec[hashToIndex(tok)] += tokenWeight
	}

	normalized := normalizeForNgrams(trimmed)
	for i := 0; i+ngramSize <= len(normalized); i++ {
		vec[hashToIndex(normalized[i:i+ngramSize])] += ngramWeight
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently, in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func hashToIndex(s string) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(dimension))
}

func normalizeForNgrams(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalize(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

var _ corpus.Embedder = (*Embedder)(nil)
