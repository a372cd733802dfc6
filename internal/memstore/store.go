// Package memstore is an in-memory, process-local reference implementation
// of corpus.Store, backed by bleve for lexical search and coder/hnsw for
// vector search. It exists so the engine and CLI can run end to end
// without a real database; a production deployment would swap in a
// Postgres/pgvector-backed Store behind the same interface.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/coder/hnsw"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// bleveDocument is the shape indexed per chunk; only Content is analyzed.
type bleveDocument struct {
	Content string
}

// Store is a single-process, in-memory corpus.Store. All state lives in
// Go maps and in-process index structures; nothing is persisted to disk.
type Store struct {
	mu sync.RWMutex

	papers map[model.PaperID]model.Paper
	chunks map[model.ChunkID]model.Chunk
	edges  []model.CitationEdge

	lexical bleve.Index

	vector  *hnsw.Graph[uint64]
	idMap   map[model.ChunkID]uint64
	keyMap  map[uint64]model.ChunkID
	nextKey uint64
}

// New builds an empty Store with a fresh in-memory bleve index and hnsw
// graph.
func New() (*Store, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("building in-memory lexical index: %w", err)
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance

	return &Store{
		papers: make(map[model.PaperID]model.Paper),
		chunks: make(map[model.ChunkID]model.Chunk),

		lexical: idx,

		vector: graph,
		idMap:  make(map[model.ChunkID]uint64),
		keyMap: make(map[uint64]model.ChunkID),
	}, nil
}

// AddPaper registers a paper, making it visible to ListPapers for its
// tenant.
func (s *Store) AddPaper(p model.Paper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[p.ID] = p
}

// AddCitation records citing→cited; both endpoints should already be
// registered via AddPaper.
func (s *Store) AddCitation(citing, cited model.PaperID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, model.CitationEdge{Citing: citing, Cited: cited})
}

// AddChunk indexes chunk for both lexical and vector search. The chunk's
// embedding, if non-empty, is normalized and inserted into the hnsw graph;
// its content is always indexed in bleve.
func (s *Store) AddChunk(chunk model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks[chunk.ID] = chunk

	if err := s.lexical.Index(chunk.ID.String(), bleveDocument{Content: chunk.Content}); err != nil {
		return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
	}

	if len(chunk.Embedding) == 0 {
		return nil
	}

	key := s.nextKey
	s.nextKey++
	vec := make([]float32, len(chunk.Embedding))
	copy(vec, chunk.Embedding)
	normalize(vec)

	s.vector.Add(hnsw.MakeNode(key, vec))
	s.idMap[chunk.ID] = key
	s.keyMap[key] = chunk.ID

	return nil
}

func normalize(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

// GetPaper returns the paper with id, or a MissingData error if unknown.
func (s *Store) GetPaper(ctx context.Context, id model.PaperID) (model.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.papers[id]
	if !ok {
		return model.Paper{}, apperr.MissingDataf("paper %s not found", id)
	}
	return p, nil
}

// ListPapers returns every paper registered for tenant.
func (s *Store) ListPapers(ctx context.Context, tenant model.TenantID) ([]model.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		if p.TenantID == tenant {
			out = append(out, p)
		}
	}
	return out, nil
}

// Citations returns every citation edge between two papers of tenant.
func (s *Store) Citations(ctx context.Context, tenant model.TenantID) ([]model.CitationEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CitationEdge, 0, len(s.edges))
	for _, e := range s.edges {
		citing, ok := s.papers[e.Citing]
		if !ok || citing.TenantID != tenant {
			continue
		}
		cited, ok := s.papers[e.Cited]
		if !ok || cited.TenantID != tenant {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// VectorSearch runs cosine-similarity nearest-neighbor search over the
// hnsw graph, filtering to tenant and minScore.
func (s *Store) VectorSearch(ctx context.Context, tenant model.TenantID, vec []float32, k int, minScore float64) ([]corpus.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vector.Len() == 0 {
		return nil, nil
	}

	query := make([]float32, len(vec))
	copy(query, vec)
	normalize(query)

	overfetch := k * 4
	if overfetch < k {
		overfetch = k
	}
	nodes := s.vector.Search(query, overfetch)

	hits := make([]corpus.VectorHit, 0, len(nodes))
	for _, node := range nodes {
		chunkID, ok := s.keyMap[node.Key]
		if !ok {
			continue
		}
		chunk, ok := s.chunks[chunkID]
		if !ok {
			continue
		}
		paper, ok := s.papers[chunk.PaperID]
		if !ok || paper.TenantID != tenant {
			continue
		}

		distance := s.vector.Distance(query, node.Value)
		similarity := 1.0 - float64(distance)
		if similarity < minScore {
			continue
		}

		hits = append(hits, corpus.VectorHit{Chunk: chunk, PaperTitle: paper.Title, Similarity: similarity})
		if len(hits) >= k {
			break
		}
	}
	return hits, nil
}

// LexicalSearch runs a bleve match query over indexed chunk content,
// filtering to tenant.
func (s *Store) LexicalSearch(ctx context.Context, tenant model.TenantID, query string, k int) ([]corpus.LexicalHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return nil, nil
	}

	overfetch := k * 4
	if overfetch < k {
		overfetch = k
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = overfetch

	result, err := s.lexical.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	hits := make([]corpus.LexicalHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		chunkID, err := model.ParseChunkID(hit.ID)
		if err != nil {
			continue
		}
		chunk, ok := s.chunks[chunkID]
		if !ok {
			continue
		}
		paper, ok := s.papers[chunk.PaperID]
		if !ok || paper.TenantID != tenant {
			continue
		}

		hits = append(hits, corpus.LexicalHit{Chunk: chunk, PaperTitle: paper.Title, Score: hit.Score})
		if len(hits) >= k {
			break
		}
	}
	return hits, nil
}

var _ corpus.Store = (*Store)(nil)
