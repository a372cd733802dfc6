// Package retrieval implements the vector, lexical, RRF-fused, and hybrid
// retrievers (C2-C5): parallel fan-out over a corpus store, deterministic
// rank-based fusion, and score normalization to the [0,1] surface.
package retrieval

import (
	"sort"

	"github.com/paperforge/paperforge-core/internal/model"
)

// Mode selects which retriever(s) a Request is routed to.
type Mode string

const (
	ModeVector  Mode = "vector"
	ModeLexical Mode = "lexical"
	ModeHybrid  Mode = "hybrid"
)

// Request describes one retrieval call.
type Request struct {
	Tenant         model.TenantID
	Query          string
	QueryEmbedding []float32
	Mode           Mode
	Limit          int
	MinScore       float64
}

func sortChunks(chunks []model.ScoredChunk) {
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Less(chunks[j]) })
}

// clamp01 keeps a score inside [0,1], guarding against floating point drift.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
