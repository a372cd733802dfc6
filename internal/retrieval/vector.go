package retrieval

import (
	"context"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// VectorRetriever performs approximate-nearest-neighbour lookup over chunk
// embeddings, restricted to one tenant.
type VectorRetriever struct {
	store corpus.Store
}

// NewVectorRetriever builds a VectorRetriever over store.
func NewVectorRetriever(store corpus.Store) *VectorRetriever {
	return &VectorRetriever{store: store}
}

// Retrieve returns the top-K chunks by cosine similarity, score-descending
// with (paper_id, chunk_index) tie-break, normalized to [0,1] by clamping.
func (r *VectorRetriever) Retrieve(ctx context.Context, req Request) ([]model.ScoredChunk, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, apperr.MissingDataf("vector retrieval requires a query embedding")
	}

	hits, err := r.store.VectorSearch(ctx, req.Tenant, req.QueryEmbedding, req.Limit, req.MinScore)
	if err != nil {
		return nil, apperr.Upstreamf(err, "vector search failed")
	}

	results := make([]model.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		score := clamp01(h.Similarity)
		if score < req.MinScore {
			continue
		}
		results = append(results, model.ScoredChunk{
			ChunkID:    h.Chunk.ID,
			PaperID:    h.Chunk.PaperID,
			PaperTitle: h.PaperTitle,
			Content:    h.Chunk.Content,
			ChunkIndex: h.Chunk.ChunkIndex,
			Score:      score,
			Source:     model.SourceVector,
		})
	}

	sortChunks(results)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}
