// Package corpus declares the narrow, read-only collaborator interfaces
// the retrieval and context-intelligence core depends on: a tenant-scoped
// corpus store, an embedder, and an LLM. Concrete implementations (a real
// datastore, an OpenAI embedder, an Anthropic completion client) live under
// internal/memstore and internal/adapters and are wired in by the caller —
// the core itself never imports a concrete collaborator.
package corpus

import (
	"context"

	"github.com/paperforge/paperforge-core/internal/model"
)

// VectorHit is one candidate returned by a nearest-neighbour search, paired
// with its raw similarity before the caller rescales it to [0,1].
type VectorHit struct {
	Chunk      model.Chunk
	PaperTitle string
	Similarity float64 // raw cosine similarity, caller normalizes to [0,1]
}

// LexicalHit is one candidate returned by a lexical search, paired with its
// raw BM25-like score before normalization.
type LexicalHit struct {
	Chunk      model.Chunk
	PaperTitle string
	Score      float64 // raw score in [0, inf)
}

// Store is the read-only, tenant-scoped view of the corpus the core
// consumes. Persistence, ingestion, and indexing are the caller's concern;
// Store only needs to answer these five questions.
type Store interface {
	GetPaper(ctx context.Context, id model.PaperID) (model.Paper, error)
	ListPapers(ctx context.Context, tenant model.TenantID) ([]model.Paper, error)
	VectorSearch(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]VectorHit, error)
	LexicalSearch(ctx context.Context, tenant model.TenantID, query string, k int) ([]LexicalHit, error)
	Citations(ctx context.Context, tenant model.TenantID) ([]model.CitationEdge, error)
}

// Embedder turns text into the vector space the Store's embeddings live in.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// CompletionOptions configures a single LLM call.
type CompletionOptions struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// LLM is the opaque prompt→text collaborator the Synthesizer calls.
type LLM interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}
