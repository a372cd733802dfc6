package retrieval

import (
	"sort"

	"github.com/paperforge/paperforge-core/internal/model"
)

// RRFConfig tunes the constant and per-list weights of reciprocal rank
// fusion.
type RRFConfig struct {
	K             int
	VectorWeight  float64
	LexicalWeight float64
}

// RRFuser fuses a vector-ranked list and a lexical-ranked list into one
// hybrid-ranked list via reciprocal rank fusion.
type RRFuser struct {
	cfg RRFConfig
}

// NewRRFuser builds an RRFuser with the given configuration.
func NewRRFuser(cfg RRFConfig) *RRFuser {
	return &RRFuser{cfg: cfg}
}

type rrfAccum struct {
	chunk model.ScoredChunk
	score float64
}

// Fuse combines vector and lexical into one hybrid-ranked, limit-truncated,
// max-normalized list. Each list contributes at most once per chunk — a
// chunk repeated within one list only counts its first (best-ranked)
// occurrence ("first-rank-wins"), so a chunk can't inflate its own score
// by appearing twice in one input list.
func (f *RRFuser) Fuse(vector, lexical []model.ScoredChunk, limit int) []model.ScoredChunk {
	accum := make(map[model.ChunkID]*rrfAccum)
	order := make([]model.ChunkID, 0, len(vector)+len(lexical))

	addList := func(list []model.ScoredChunk, weight float64) {
		seen := make(map[model.ChunkID]bool, len(list))
		for rank, chunk := range list {
			if seen[chunk.ChunkID] {
				continue
			}
			seen[chunk.ChunkID] = true

			contribution := weight / (float64(f.cfg.K) + float64(rank+1))
			a, ok := accum[chunk.ChunkID]
			if !ok {
				a = &rrfAccum{chunk: chunk}
				accum[chunk.ChunkID] = a
				order = append(order, chunk.ChunkID)
			}
			a.score += contribution
		}
	}

	addList(vector, f.cfg.VectorWeight)
	addList(lexical, f.cfg.LexicalWeight)

	results := make([]model.ScoredChunk, 0, len(order))
	for _, id := range order {
		a := accum[id]
		c := a.chunk
		c.Score = a.score
		c.Source = model.SourceHybrid
		results = append(results, c)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Less(results[j]) })

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if len(results) > 0 {
		max := results[0].Score
		if max > 0 {
			for i := range results {
				results[i].Score = results[i].Score / max
			}
		}
	}

	return results
}
