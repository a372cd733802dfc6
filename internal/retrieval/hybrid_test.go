package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// fakeStore is a hand-mock corpus.Store: each method is backed by a closure
// so individual tests can override only the behavior they exercise.
type fakeStore struct {
	vectorSearch  func(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error)
	lexicalSearch func(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error)
}

func (f *fakeStore) GetPaper(ctx context.Context, id model.PaperID) (model.Paper, error) {
	return model.Paper{}, errors.New("not implemented")
}
func (f *fakeStore) ListPapers(ctx context.Context, tenant model.TenantID) ([]model.Paper, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) VectorSearch(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
	return f.vectorSearch(ctx, tenant, vec, k, minScore)
}
func (f *fakeStore) LexicalSearch(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
	return f.lexicalSearch(ctx, tenant, query, k)
}
func (f *fakeStore) Citations(ctx context.Context, tenant model.TenantID) ([]model.CitationEdge, error) {
	return nil, errors.New("not implemented")
}

func chunkFixture(n int) (model.PaperID, model.ChunkID) {
	return model.NewPaperID(), model.NewChunkID()
}

func defaultRRFConfig() RRFConfig {
	return RRFConfig{K: 60, VectorWeight: 0.6, LexicalWeight: 0.4}
}

// TestHybridRetrieve_PureVector checks that a hybrid query with no lexical
// hits still returns the vector-ranked chunks, tagged hybrid.
func TestHybridRetrieve_PureVector(t *testing.T) {
	paperA, chunkA := chunkFixture(1)
	paperB, chunkB := chunkFixture(2)

	store := &fakeStore{
		vectorSearch: func(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
			return []corpus.VectorHit{
				{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0, Content: "a"}, PaperTitle: "A", Similarity: 0.9},
				{Chunk: model.Chunk{ID: chunkB, PaperID: paperB, ChunkIndex: 0, Content: "b"}, PaperTitle: "B", Similarity: 0.5},
			}, nil
		},
		lexicalSearch: func(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
			return nil, nil
		},
	}

	h := NewHybridRetriever(store, defaultRRFConfig())
	req := Request{Tenant: model.NewTenantID(), Query: "xyz", QueryEmbedding: []float32{0.1, 0.2}, Limit: 10}

	results, err := h.Retrieve(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, chunkA, results[0].ChunkID)
	assert.Equal(t, chunkB, results[1].ChunkID)
	assert.Equal(t, model.SourceHybrid, results[0].Source)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

// TestHybridRetrieve_FusionOrdering checks RRF ordering: B, first in both
// lists, comes first; A, in both lists at lower ranks, comes second; D (vector
// rank 3, 0.6/63) outranks C (lexical rank 2, 0.4/62) because the vector
// weight is larger.
func TestHybridRetrieve_FusionOrdering(t *testing.T) {
	paperA, chunkA := chunkFixture(1)
	paperB, chunkB := chunkFixture(2)
	paperC, chunkC := chunkFixture(3)
	paperD, chunkD := chunkFixture(4)

	store := &fakeStore{
		vectorSearch: func(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
			return []corpus.VectorHit{
				{Chunk: model.Chunk{ID: chunkB, PaperID: paperB, ChunkIndex: 0}, PaperTitle: "B", Similarity: 0.95},
				{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0}, PaperTitle: "A", Similarity: 0.8},
				{Chunk: model.Chunk{ID: chunkD, PaperID: paperD, ChunkIndex: 0}, PaperTitle: "D", Similarity: 0.3},
			}, nil
		},
		lexicalSearch: func(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
			return []corpus.LexicalHit{
				{Chunk: model.Chunk{ID: chunkB, PaperID: paperB, ChunkIndex: 0}, PaperTitle: "B", Score: 5.0},
				{Chunk: model.Chunk{ID: chunkC, PaperID: paperC, ChunkIndex: 0}, PaperTitle: "C", Score: 3.0},
				{Chunk: model.Chunk{ID: chunkA, PaperID: paperA, ChunkIndex: 0}, PaperTitle: "A", Score: 0.5},
			}, nil
		},
	}

	h := NewHybridRetriever(store, defaultRRFConfig())
	req := Request{Tenant: model.NewTenantID(), Query: "deep learning", QueryEmbedding: []float32{0.1}, Limit: 10}

	results, err := h.Retrieve(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, chunkB, results[0].ChunkID, "B ranks in both lists and must come first")
	assert.Equal(t, chunkA, results[1].ChunkID, "A ranks high in both lists, second")
	assert.Equal(t, chunkD, results[2].ChunkID)
	assert.Equal(t, chunkC, results[3].ChunkID)
}

func TestHybridRetrieve_VectorFailureDegradesToLexical(t *testing.T) {
	paperC, chunkC := chunkFixture(1)

	store := &fakeStore{
		vectorSearch: func(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
			return nil, errors.New("ann index unavailable")
		},
		lexicalSearch: func(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
			return []corpus.LexicalHit{
				{Chunk: model.Chunk{ID: chunkC, PaperID: paperC, ChunkIndex: 0}, PaperTitle: "C", Score: 2.0},
			}, nil
		},
	}

	h := NewHybridRetriever(store, defaultRRFConfig())
	req := Request{Tenant: model.NewTenantID(), Query: "graph neural network", QueryEmbedding: []float32{0.1}, Limit: 10}

	results, err := h.Retrieve(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.PartialUpstream, apperr.KindOf(err))
	require.Len(t, results, 1)
	assert.Equal(t, chunkC, results[0].ChunkID)
	assert.Equal(t, model.SourceLexical, results[0].Source)
}

func TestHybridRetrieve_BothFail(t *testing.T) {
	store := &fakeStore{
		vectorSearch: func(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
			return nil, errors.New("ann index unavailable")
		},
		lexicalSearch: func(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
			return nil, errors.New("index unavailable")
		},
	}

	h := NewHybridRetriever(store, defaultRRFConfig())
	req := Request{Tenant: model.NewTenantID(), Query: "graph neural network", QueryEmbedding: []float32{0.1}, Limit: 10}

	_, err := h.Retrieve(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
}
