package retrieval

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// HybridRetriever fans out to VectorRetriever and LexicalRetriever in
// parallel and fuses their results via RRFuser.
type HybridRetriever struct {
	vector  *VectorRetriever
	lexical *LexicalRetriever
	fuser   *RRFuser
}

// NewHybridRetriever builds a HybridRetriever over the given store and RRF
// configuration.
func NewHybridRetriever(store corpus.Store, rrfCfg RRFConfig) *HybridRetriever {
	return &HybridRetriever{
		vector:  NewVectorRetriever(store),
		lexical: NewLexicalRetriever(store),
		fuser:   NewRRFuser(rrfCfg),
	}
}

// Retrieve issues an over-fetched (2x limit) vector and lexical search in
// parallel, fuses, and applies the caller's min_score. If both retrievers
// fail, the first error surfaces; if one fails, the other's results are
// returned as-is (demoted to PartialUpstream) without fusion.
func (h *HybridRetriever) Retrieve(ctx context.Context, req Request) ([]model.ScoredChunk, error) {
	expanded := req
	expanded.Limit = req.Limit * 2
	expanded.MinScore = 0

	var vectorResults, lexicalResults []model.ScoredChunk
	var vectorErr, lexicalErr error

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vectorResults, vectorErr = h.vector.Retrieve(gCtx, expanded)
		return nil // collected, not propagated: see partial-failure handling below
	})
	g.Go(func() error {
		lexicalResults, lexicalErr = h.lexical.Retrieve(gCtx, expanded)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Upstreamf(err, "hybrid retrieval fan-out failed")
	}

	switch {
	case vectorErr != nil && lexicalErr != nil:
		return nil, apperr.Upstreamf(vectorErr, "both vector and lexical retrieval failed")
	case vectorErr != nil:
		slog.Warn("vector retrieval failed, degrading to lexical-only", "error", vectorErr)
		return filterMinScore(lexicalResults, req.MinScore, req.Limit), apperr.PartialUpstreamf(vectorErr, "lexical", "vector retrieval failed")
	case lexicalErr != nil:
		slog.Warn("lexical retrieval failed, degrading to vector-only", "error", lexicalErr)
		return filterMinScore(vectorResults, req.MinScore, req.Limit), apperr.PartialUpstreamf(lexicalErr, "vector", "lexical retrieval failed")
	}

	fused := h.fuser.Fuse(vectorResults, lexicalResults, req.Limit)
	return filterMinScore(fused, req.MinScore, 0), nil
}

func filterMinScore(chunks []model.ScoredChunk, minScore float64, limit int) []model.ScoredChunk {
	out := chunks[:0:0]
	for _, c := range chunks {
		if c.Score >= minScore {
			out = append(out, c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
