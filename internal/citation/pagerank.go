package citation

import (
	"sort"

	"github.com/paperforge/paperforge-core/internal/model"
)

// PageRankConfig tunes power-iteration PageRank.
type PageRankConfig struct {
	Damping      float64
	MaxIter      int
	Epsilon      float64
}

// AuthorityScorer computes PageRank-based authority scores over a citation
// Graph.
type AuthorityScorer struct {
	cfg PageRankConfig
}

// NewAuthorityScorer builds an AuthorityScorer with the given configuration.
func NewAuthorityScorer(cfg PageRankConfig) *AuthorityScorer {
	return &AuthorityScorer{cfg: cfg}
}

// Compute runs power-iteration PageRank over graph, returning a
// max-normalized authority score per node. An empty graph returns an empty
// map, not an error. Dangling nodes (out-degree 0) redistribute their mass
// uniformly across every node each iteration, so no probability mass leaks.
func (s *AuthorityScorer) Compute(graph *Graph) map[model.PaperID]float64 {
	nodes := graph.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[model.PaperID]float64{}
	}

	nf := float64(n)
	damping := s.cfg.Damping
	teleport := (1 - damping) / nf

	scores := make(map[model.PaperID]float64, n)
	initial := 1.0 / nf
	for _, id := range nodes {
		scores[id] = initial
	}

	outDegree := make(map[model.PaperID]int, n)
	var dangling []model.PaperID
	for _, id := range nodes {
		d := graph.ReferenceCount(id)
		outDegree[id] = d
		if d == 0 {
			dangling = append(dangling, id)
		}
	}

	for iter := 0; iter < s.cfg.MaxIter; iter++ {
		var danglingMass float64
		for _, id := range dangling {
			danglingMass += scores[id]
		}
		danglingShare := damping * danglingMass / nf

		next := make(map[model.PaperID]float64, n)
		maxDiff := 0.0
		for _, node := range nodes {
			var citationSum float64
			for _, citing := range graph.Citations(node) {
				out := outDegree[citing]
				if out == 0 {
					continue
				}
				citationSum += scores[citing] / float64(out)
			}
			newScore := teleport + damping*citationSum + danglingShare
			diff := newScore - scores[node]
			if diff < 0 {
				diff = -diff
			}
			if diff > maxDiff {
				maxDiff = diff
			}
			next[node] = newScore
		}

		scores = next
		if maxDiff < s.cfg.Epsilon {
			break
		}
	}

	maxScore := 0.0
	for _, v := range scores {
		if v > maxScore {
			maxScore = v
		}
	}
	if maxScore > 0 {
		for id := range scores {
			scores[id] /= maxScore
		}
	}

	return scores
}

// Rank computes authority scores and returns the top-limit papers
// descending, tie-broken by paper ID.
func (s *AuthorityScorer) Rank(graph *Graph, limit int) []model.AuthorityPaper {
	scores := s.Compute(graph)

	papers := make([]model.AuthorityPaper, 0, len(scores))
	for id, score := range scores {
		papers = append(papers, model.AuthorityPaper{
			PaperID:        id,
			Title:          graph.Title(id),
			AuthorityScore: score,
			CitationCount:  graph.CitationCount(id),
			ReferenceCount: graph.ReferenceCount(id),
		})
	}

	sort.SliceStable(papers, func(i, j int) bool {
		if papers[i].AuthorityScore != papers[j].AuthorityScore {
			return papers[i].AuthorityScore > papers[j].AuthorityScore
		}
		return papers[i].PaperID.String() < papers[j].PaperID.String()
	})

	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers
}
