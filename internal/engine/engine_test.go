package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperforge/paperforge-core/internal/citation"
	"github.com/paperforge/paperforge-core/internal/config"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// fakeStore is a hand-mock corpus.Store covering just what the engine's
// four operations exercise: vector/lexical search plus the paper and
// citation-edge listings the graph is built from.
type fakeStore struct {
	papers        []model.Paper
	edges         []model.CitationEdge
	vectorHits    []corpus.VectorHit
	lexicalHits   []corpus.LexicalHit
	vectorErr     error
	lexicalErr    error
}

func (f *fakeStore) GetPaper(ctx context.Context, id model.PaperID) (model.Paper, error) {
	for _, p := range f.papers {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Paper{}, errors.New("not found")
}
func (f *fakeStore) ListPapers(ctx context.Context, tenant model.TenantID) ([]model.Paper, error) {
	return f.papers, nil
}
func (f *fakeStore) VectorSearch(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
	return f.vectorHits, f.vectorErr
}
func (f *fakeStore) LexicalSearch(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
	return f.lexicalHits, f.lexicalErr
}
func (f *fakeStore) Citations(ctx context.Context, tenant model.TenantID) ([]model.CitationEdge, error) {
	return f.edges, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}
func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}
func (fakeEmbedder) Dimension() int    { return 3 }
func (fakeEmbedder) ModelName() string { return "fake" }

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Complete(ctx context.Context, prompt string, opts corpus.CompletionOptions) (string, error) {
	return f.response, f.err
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.GraphCacheSize = 16
	return cfg
}

func paper(title string) model.Paper {
	return model.Paper{ID: model.NewPaperID(), Title: title}
}

func TestSearch_HybridBlendsAuthority(t *testing.T) {
	a := paper("Paper A")
	b := paper("Paper B")
	chunkA := model.NewChunkID()
	chunkB := model.NewChunkID()

	store := &fakeStore{
		papers: []model.Paper{a, b},
		edges:  []model.CitationEdge{{Citing: b.ID, Cited: a.ID}},
		vectorHits: []corpus.VectorHit{
			{Chunk: model.Chunk{ID: chunkA, PaperID: a.ID, ChunkIndex: 0, Content: "alpha"}, PaperTitle: a.Title, Similarity: 0.7},
			{Chunk: model.Chunk{ID: chunkB, PaperID: b.ID, ChunkIndex: 0, Content: "beta"}, PaperTitle: b.Title, Similarity: 0.6},
		},
		lexicalHits: []corpus.LexicalHit{
			{Chunk: model.Chunk{ID: chunkA, PaperID: a.ID, ChunkIndex: 0, Content: "alpha"}, PaperTitle: a.Title, Score: 1.0},
		},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.Search(context.Background(), SearchRequest{Tenant: model.NewTenantID(), Query: "alpha beta", Mode: "hybrid", Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.False(t, resp.Degraded)
}

func TestSearch_HybridPartialFailureDegradesWithoutError(t *testing.T) {
	chunkA := model.NewChunkID()
	paperA := model.NewPaperID()

	store := &fakeStore{
		vectorErr: errors.New("ann unavailable"),
		lexicalHits: []corpus.LexicalHit{
			{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0, Content: "x"}, PaperTitle: "X", Score: 1.0},
		},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.Search(context.Background(), SearchRequest{Tenant: model.NewTenantID(), Query: "x", Mode: "hybrid", Limit: 10})
	require.NoError(t, err, "a partial upstream failure must not fail the whole Search call")
	assert.True(t, resp.Degraded)
	require.Len(t, resp.Results, 1)
}

func TestIntelligentSearch_SynthesisModeDegradesWhenLLMFails(t *testing.T) {
	chunkA := model.NewChunkID()
	paperA := model.NewPaperID()

	store := &fakeStore{
		vectorHits: []corpus.VectorHit{
			{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0, Content: "Transformer models found that attention scales well."}, PaperTitle: "X", Similarity: 0.9},
		},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, fakeLLM{err: errors.New("llm unavailable")}, nil)
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.IntelligentSearch(context.Background(), IntelligentSearchRequest{
		Tenant: model.NewTenantID(),
		Query:  "explain transformers",
		Options: IntelligentSearchOptions{
			Mode:             ModeSynthesis,
			IncludeSynthesis: true,
			Limit:            10,
		},
	})
	require.NoError(t, err, "a synthesis failure must degrade, not fail, the whole IntelligentSearch response")
	assert.True(t, resp.SynthesisDegraded)
	assert.Nil(t, resp.Synthesis)
	assert.NotEmpty(t, resp.ContextWindows)
}

func TestIntelligentSearch_DeepModeProducesReasoningHops(t *testing.T) {
	chunkA := model.NewChunkID()
	paperA := model.NewPaperID()

	store := &fakeStore{
		vectorHits: []corpus.VectorHit{
			{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0, Content: "Researchers found that pretraining corpora improve downstream accuracy substantially across benchmarks."}, PaperTitle: "X", Similarity: 0.9},
		},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.IntelligentSearch(context.Background(), IntelligentSearchRequest{
		Tenant: model.NewTenantID(),
		Query:  "explain pretraining corpora",
		Options: IntelligentSearchOptions{
			Mode:             ModeDeep,
			MaxHops:          2,
			IncludeReasoning: true,
			Limit:            10,
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ReasoningHops)
	assert.NotEmpty(t, resp.Results)
}

func TestCitationTraversal_MergesMultipleSeeds(t *testing.T) {
	a := paper("A")
	b := paper("B")
	c := paper("C")

	store := &fakeStore{
		papers: []model.Paper{a, b, c},
		edges: []model.CitationEdge{
			{Citing: a.ID, Cited: b.ID},
			{Citing: c.ID, Cited: b.ID},
		},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.CitationTraversal(context.Background(), CitationTraversalRequest{
		Tenant:     model.NewTenantID(),
		SeedPapers: []model.PaperID{a.ID, c.ID},
		Direction:  citation.Forward,
		MaxHops:    1,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Papers, 1, "B is reached from both seeds but must be deduplicated")
	assert.Equal(t, b.ID, resp.Papers[0].PaperID)
	assert.Len(t, resp.Edges, 2)
}

func TestAuthorities_ReturnsRankedPapers(t *testing.T) {
	a := paper("A")
	b := paper("B")

	store := &fakeStore{
		papers: []model.Paper{a, b},
		edges:  []model.CitationEdge{{Citing: a.ID, Cited: b.ID}},
	}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	authorities, err := e.Authorities(context.Background(), model.NewTenantID(), 10)
	require.NoError(t, err)
	require.Len(t, authorities, 2)
	assert.Equal(t, b.ID, authorities[0].PaperID, "B is cited and must outrank A")
}

func TestGraphCache_InvalidateForcesRebuild(t *testing.T) {
	store := &fakeStore{papers: []model.Paper{paper("A")}}

	e, err := New(testConfig(), store, fakeEmbedder{}, nil, nil)
	require.NoError(t, err)
	defer e.Close()

	tenant := model.NewTenantID()
	_, err = e.Authorities(context.Background(), tenant, 10)
	require.NoError(t, err)

	e.InvalidateGraph(tenant)
	_, ok := e.graphs.Get(tenant)
	assert.False(t, ok, "InvalidateGraph must evict the cached graph")
}
