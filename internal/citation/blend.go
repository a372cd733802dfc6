package citation

import (
	"sort"

	"github.com/paperforge/paperforge-core/internal/model"
)

// BlendConfig tunes how much weight authority gets against raw retrieval
// score.
type BlendConfig struct {
	Alpha float64
}

// Blend combines each chunk's retrieval score with its paper's authority
// score (final = α·retrieval + (1−α)·authority), then rescales the
// blended scores to [0,1] over the result set and re-sorts.
func Blend(chunks []model.ScoredChunk, authority map[model.PaperID]float64, cfg BlendConfig) []model.ScoredChunk {
	if len(chunks) == 0 {
		return chunks
	}

	out := make([]model.ScoredChunk, len(chunks))
	copy(out, chunks)

	maxScore := 0.0
	for i := range out {
		a := authority[out[i].PaperID]
		out[i].Score = cfg.Alpha*out[i].Score + (1-cfg.Alpha)*a
		if out[i].Score > maxScore {
			maxScore = out[i].Score
		}
	}
	if maxScore > 0 {
		for i := range out {
			out[i].Score /= maxScore
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
