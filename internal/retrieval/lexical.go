package retrieval

import (
	"context"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
	"github.com/paperforge/paperforge-core/internal/queryparser"
)

// LexicalRetriever performs BM25-style lexical lookup over chunk text.
type LexicalRetriever struct {
	store corpus.Store
}

// NewLexicalRetriever builds a LexicalRetriever over store.
func NewLexicalRetriever(store corpus.Store) *LexicalRetriever {
	return &LexicalRetriever{store: store}
}

// Retrieve returns the top-K chunks ranked by lexical relevance, scores
// normalized by s/(s+1). A query with no meaningful tokens after stop-word
// removal returns the empty sequence, not an error.
func (r *LexicalRetriever) Retrieve(ctx context.Context, req Request) ([]model.ScoredChunk, error) {
	if len(queryparser.MeaningfulTokens(req.Query)) == 0 {
		return nil, nil
	}

	hits, err := r.store.LexicalSearch(ctx, req.Tenant, req.Query, req.Limit)
	if err != nil {
		return nil, apperr.Upstreamf(err, "lexical search failed")
	}

	results := make([]model.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		score := clamp01(h.Score / (h.Score + 1.0))
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
			Source:     model.SourceLexical,
		})
	}

	sortChunks(results)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}
