package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paperforge/paperforge-core/internal/model"
)

func TestBlend_AuthorityBoostsButDoesNotReplace(t *testing.T) {
	lowAuthorityPaper := model.NewPaperID()
	highAuthorityPaper := model.NewPaperID()

	chunks := []model.ScoredChunk{
		{ChunkID: model.NewChunkID(), PaperID: lowAuthorityPaper, Score: 0.9},
		{ChunkID: model.NewChunkID(), PaperID: highAuthorityPaper, Score: 0.85},
	}
	authority := map[model.PaperID]float64{
		lowAuthorityPaper:  0.0,
		highAuthorityPaper: 1.0,
	}

	blended := Blend(chunks, authority, BlendConfig{Alpha: 0.8})

	assert.Equal(t, highAuthorityPaper, blended[0].PaperID, "authority can tip a close retrieval score")
	assert.InDelta(t, 1.0, blended[0].Score, 1e-9)
}

func TestBlend_EmptyInput(t *testing.T) {
	assert.Empty(t, Blend(nil, map[model.PaperID]float64{}, BlendConfig{Alpha: 0.8}))
}
