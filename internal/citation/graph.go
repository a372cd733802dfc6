// Package citation builds the in-memory citation graph (C6) and scores it
// with PageRank-style authority propagation (C7).
package citation

import (
	"context"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// Direction selects which adjacency a traversal follows.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
	Both     Direction = "both"
)

// Graph is an in-memory, tenant-scoped citation graph: two adjacency maps
// plus paper titles, built once from the corpus store and read many times.
type Graph struct {
	outgoing map[model.PaperID][]model.PaperID
	incoming map[model.PaperID][]model.PaperID
	nodes    map[model.PaperID]bool
	titles   map[model.PaperID]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		outgoing: make(map[model.PaperID][]model.PaperID),
		incoming: make(map[model.PaperID][]model.PaperID),
		nodes:    make(map[model.PaperID]bool),
		titles:   make(map[model.PaperID]string),
	}
}

// Build loads every citation edge for tenant from store, deduplicating and
// dropping self-edges, and returns the resulting graph.
func Build(ctx context.Context, store corpus.Store, tenant model.TenantID) (*Graph, error) {
	papers, err := store.ListPapers(ctx, tenant)
	if err != nil {
		return nil, apperr.Upstreamf(err, "listing papers for citation graph failed")
	}
	edges, err := store.Citations(ctx, tenant)
	if err != nil {
		return nil, apperr.Upstreamf(err, "loading citation edges failed")
	}

	g := New()
	for _, p := range papers {
		g.nodes[p.ID] = true
		g.titles[p.ID] = p.Title
	}

	seen := make(map[[2]model.PaperID]bool, len(edges))
	for _, e := range edges {
		if e.Citing == e.Cited {
			continue
		}
		key := [2]model.PaperID{e.Citing, e.Cited}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.AddEdge(e.Citing, e.Cited)
	}
	return g, nil
}

// AddEdge records that citing cites cited, adding both endpoints as nodes if
// new.
func (g *Graph) AddEdge(citing, cited model.PaperID) {
	g.nodes[citing] = true
	g.nodes[cited] = true
	g.outgoing[citing] = append(g.outgoing[citing], cited)
	g.incoming[cited] = append(g.incoming[cited], citing)
}

// References returns the papers that paper cites (outgoing edges).
func (g *Graph) References(paper model.PaperID) []model.PaperID { return g.outgoing[paper] }

// Citations returns the papers that cite paper (incoming edges).
func (g *Graph) Citations(paper model.PaperID) []model.PaperID { return g.incoming[paper] }

// Nodes returns every paper in the graph, in no particular order.
func (g *Graph) Nodes() []model.PaperID {
	out := make([]model.PaperID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

// NodeCount returns the number of papers in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Title returns the display title for paper, or "" if unknown.
func (g *Graph) Title(paper model.PaperID) string { return g.titles[paper] }

// CitationCount returns the in-degree (papers citing paper).
func (g *Graph) CitationCount(paper model.PaperID) int { return len(g.incoming[paper]) }

// ReferenceCount returns the out-degree (papers paper cites).
func (g *Graph) ReferenceCount(paper model.PaperID) int { return len(g.outgoing[paper]) }

// hop pairs a paper with its BFS distance from the traversal seed.
type hop struct {
	paper    model.PaperID
	distance int
}

// Traverse runs a bounded BFS from start to depth maxHops in direction,
// visiting each paper at most once (first-visit wins) and returning hits in
// stable BFS order, excluding start itself, plus the graph edges discovered
// along the way. Both combines the neighbour sets of both adjacency maps at
// every step.
func (g *Graph) Traverse(start model.PaperID, maxHops int, direction Direction) ([]model.TraversedPaper, []model.CitationEdgeRef) {
	visited := map[model.PaperID]bool{start: true}
	queue := []hop{{paper: start, distance: 0}}
	var result []model.TraversedPaper
	var edges []model.CitationEdgeRef

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.distance >= maxHops {
			continue
		}

		neighbors := g.neighbors(cur.paper, direction)
		for _, n := range neighbors {
			edges = append(edges, model.CitationEdgeRef{Source: cur.paper, Target: n})
			if visited[n] {
				continue
			}
			visited[n] = true
			result = append(result, model.TraversedPaper{PaperID: n, Title: g.titles[n], HopDistance: cur.distance + 1})
			queue = append(queue, hop{paper: n, distance: cur.distance + 1})
		}
	}
	return result, edges
}

func (g *Graph) neighbors(paper model.PaperID, direction Direction) []model.PaperID {
	switch direction {
	case Forward:
		return g.outgoing[paper]
	case Backward:
		return g.incoming[paper]
	case Both:
		combined := make([]model.PaperID, 0, len(g.outgoing[paper])+len(g.incoming[paper]))
		combined = append(combined, g.outgoing[paper]...)
		combined = append(combined, g.incoming[paper]...)
		return combined
	default:
		return nil
	}
}
