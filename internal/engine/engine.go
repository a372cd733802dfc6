// Package engine wires the retrieval and context-intelligence components
// into the four external-facing operations: Search, IntelligentSearch,
// CitationTraversal, and Authorities.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/cache"
	"github.com/paperforge/paperforge-core/internal/citation"
	"github.com/paperforge/paperforge-core/internal/config"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
	"github.com/paperforge/paperforge-core/internal/queryparser"
	"github.com/paperforge/paperforge-core/internal/reasoner"
	"github.com/paperforge/paperforge-core/internal/retrieval"
	"github.com/paperforge/paperforge-core/internal/stitcher"
	"github.com/paperforge/paperforge-core/internal/synthesis"
)

// Engine is the top-level orchestrator a caller constructs once per
// process and reuses across requests; it holds no per-request mutable
// state beyond the per-tenant graph cache and the embedding and query
// caches.
type Engine struct {
	store    corpus.Store
	embedder corpus.Embedder

	parser   *queryparser.Parser
	vector   *retrieval.VectorRetriever
	lexical  *retrieval.LexicalRetriever
	hybrid   *retrieval.HybridRetriever
	scorer   *citation.AuthorityScorer
	stitcher *stitcher.Stitcher
	reasoner *reasoner.Reasoner
	synth    *synthesis.Synthesizer

	blendCfg citation.BlendConfig

	graphs     *cache.GraphCache
	embedCache *cache.EmbeddingCache
	queryCache *cache.QueryCache

	log *slog.Logger
}

// New builds an Engine from every collaborator and tuning value the four
// operations need. llm may be nil if synthesis is never requested.
func New(cfg *config.Config, store corpus.Store, embedder corpus.Embedder, llm corpus.LLM, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	graphs, err := cache.NewGraphCache(cfg.GraphCacheSize)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to build citation graph cache")
	}

	var synth *synthesis.Synthesizer
	if llm != nil {
		synth = synthesis.New(llm)
	}

	return &Engine{
		store:    store,
		embedder: embedder,
		parser: queryparser.New(queryparser.Config{
			MaxExpansions:       cfg.ParserMaxExpansions,
			MinEntityConfidence: cfg.ParserMinEntityConfidence,
		}),
		vector:  retrieval.NewVectorRetriever(store),
		lexical: retrieval.NewLexicalRetriever(store),
		hybrid: retrieval.NewHybridRetriever(store, retrieval.RRFConfig{
			K: cfg.RRFK, VectorWeight: cfg.RRFVectorWeight, LexicalWeight: cfg.RRFLexicalWeight,
		}),
		scorer: citation.NewAuthorityScorer(citation.PageRankConfig{
			Damping: cfg.PageRankDamping, MaxIter: cfg.PageRankMaxIter, Epsilon: cfg.PageRankEpsilon,
		}),
		stitcher: stitcher.New(stitcher.Config{
			MaxTokens: cfg.StitcherMaxTokens, MaxWindows: cfg.StitcherMaxWindows,
			StitchOverlapChars: cfg.StitcherOverlapChars, MinChunkScore: cfg.StitcherMinChunkScore,
		}),
		reasoner: reasoner.New(reasoner.Config{
			MaxHops: cfg.ReasonerMaxHops, MinConfidence: cfg.ReasonerMinConfidence, MaxFactsPerHop: cfg.ReasonerMaxFactsPerHop,
		}),
		synth:      synth,
		blendCfg:   citation.BlendConfig{Alpha: cfg.AuthorityAlpha},
		graphs:     graphs,
		embedCache: cache.NewEmbeddingCache(time.Duration(cfg.EmbeddingCacheTTLSeconds) * time.Second),
		queryCache: cache.New(time.Duration(cfg.QueryCacheTTLSeconds) * time.Second),
		log:        log,
	}, nil
}

// Close stops the background janitor goroutines owned by the engine's
// embedding and query caches. Callers should call this once per Engine,
// when they are done issuing requests against it.
func (e *Engine) Close() {
	e.embedCache.Stop()
	e.queryCache.Stop()
}

func (e *Engine) graphFor(ctx context.Context, tenant model.TenantID) (*citation.Graph, error) {
	if g, ok := e.graphs.Get(tenant); ok {
		return g, nil
	}
	g, err := citation.Build(ctx, e.store, tenant)
	if err != nil {
		return nil, err
	}
	e.graphs.Put(tenant, g)
	return g, nil
}

// InvalidateGraph evicts a tenant's cached citation graph so the next
// request rebuilds it from the store.
func (e *Engine) InvalidateGraph(tenant model.TenantID) {
	e.graphs.Invalidate(tenant)
}

// SearchRequest is the input to Search.
type SearchRequest struct {
	Tenant         model.TenantID
	Query          string
	QueryEmbedding []float32
	Mode           retrieval.Mode
	Limit          int
	MinScore       float64
}

// SearchResponse is the output of Search.
type SearchResponse struct {
	Results     []model.ScoredChunk
	Mode        retrieval.Mode
	QueryTimeMS int64
	Degraded    bool
}

// Search runs one of the three retrieval modes and blends the result with
// per-paper authority before returning it.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	start := time.Now()

	if cached, ok := e.queryCache.Get(req.Tenant, req.Query, string(req.Mode)); ok {
		return SearchResponse{Results: cached, Mode: req.Mode, QueryTimeMS: time.Since(start).Milliseconds()}, nil
	}

	embedding := req.QueryEmbedding
	if embedding == nil && req.Mode != retrieval.ModeLexical && e.embedder != nil {
		embedHash := cache.EmbeddingQueryHash(req.Query)
		if vec, ok := e.embedCache.Get(embedHash); ok {
			embedding = vec
		} else if vec, err := e.embedder.Embed(ctx, req.Query); err != nil {
			if req.Mode == retrieval.ModeVector {
				return SearchResponse{}, apperr.Upstreamf(err, "embedding the query failed")
			}
			e.log.Warn("query embedding failed, continuing without it", "error", err, "tenant", req.Tenant.String())
		} else {
			embedding = vec
			e.embedCache.Set(embedHash, vec)
		}
	}

	rReq := retrieval.Request{Tenant: req.Tenant, Query: req.Query, QueryEmbedding: embedding, Mode: req.Mode, Limit: req.Limit, MinScore: req.MinScore}

	var results []model.ScoredChunk
	var err error
	degraded := false

	switch req.Mode {
	case retrieval.ModeVector:
		results, err = e.vector.Retrieve(ctx, rReq)
	case retrieval.ModeLexical:
		results, err = e.lexical.Retrieve(ctx, rReq)
	default:
		results, err = e.hybrid.Retrieve(ctx, rReq)
		if apperr.KindOf(err) == apperr.PartialUpstream {
			degraded = true
			err = nil
		}
	}
	if err != nil {
		return SearchResponse{}, err
	}

	graph, gerr := e.graphFor(ctx, req.Tenant)
	if gerr == nil {
		authority := e.scorer.Compute(graph)
		results = citation.Blend(results, authority, e.blendCfg)
	}

	if !degraded {
		e.queryCache.Set(req.Tenant, req.Query, string(req.Mode), results)
	}

	return SearchResponse{
		Results:     results,
		Mode:        req.Mode,
		QueryTimeMS: time.Since(start).Milliseconds(),
		Degraded:    degraded,
	}, nil
}

// IntelligentMode selects how much of the pipeline IntelligentSearch runs.
type IntelligentMode string

const (
	ModeQuick     IntelligentMode = "quick"
	ModeStandard  IntelligentMode = "standard"
	ModeDeep      IntelligentMode = "deep"
	ModeSynthesis IntelligentMode = "synthesis"
)

// IntelligentSearchOptions configures IntelligentSearch.
type IntelligentSearchOptions struct {
	Mode             IntelligentMode
	MaxHops          int
	IncludeReasoning bool
	IncludeSynthesis bool
	Limit            int
}

// IntelligentSearchRequest is the input to IntelligentSearch.
type IntelligentSearchRequest struct {
	Tenant  model.TenantID
	Query   string
	Options IntelligentSearchOptions
}

// IntelligentSearchResponse is the output of IntelligentSearch. Context,
// Reasoning, and Synthesis are present only for the modes that produce
// them.
type IntelligentSearchResponse struct {
	Understanding     queryparser.Understanding
	Results           []model.ScoredChunk
	ContextWindows    []model.ContextWindow
	CrossReferences   []model.CrossReference
	ReasoningHops     []model.ReasoningHop
	Synthesis         *synthesis.Answer
	SynthesisDegraded bool
	ProcessingTimeMS  int64
}

// IntelligentSearch runs query understanding, then standard/deep/synthesis
// processing according to options.Mode.
func (e *Engine) IntelligentSearch(ctx context.Context, req IntelligentSearchRequest) (IntelligentSearchResponse, error) {
	start := time.Now()

	understanding, err := e.parser.Parse(req.Query)
	if err != nil {
		return IntelligentSearchResponse{}, err
	}

	resp := IntelligentSearchResponse{Understanding: understanding}

	searchOnce := func(ctx context.Context, query string) ([]model.ScoredChunk, error) {
		sr, err := e.Search(ctx, SearchRequest{Tenant: req.Tenant, Query: query, Mode: retrieval.ModeHybrid, Limit: req.Options.Limit})
		if err != nil {
			return nil, err
		}
		return sr.Results, nil
	}

	if req.Options.Mode == ModeDeep {
		maxHops := req.Options.MaxHops
		if maxHops <= 0 {
			maxHops = e.reasoner.Config().MaxHops
		}
		hopReasoner := reasoner.New(reasoner.Config{MaxHops: maxHops, MinConfidence: e.reasoner.Config().MinConfidence, MaxFactsPerHop: e.reasoner.Config().MaxFactsPerHop})

		chain, err := hopReasoner.Reason(ctx, req.Query, func(ctx context.Context, query string) ([]reasoner.SearchResult, error) {
			chunks, err := searchOnce(ctx, query)
			if err != nil {
				return nil, err
			}
			out := make([]reasoner.SearchResult, len(chunks))
			for i, c := range chunks {
				out[i] = reasoner.SearchResult{Content: c.Content, Source: string(c.Source), Score: c.Score}
			}
			return out, nil
		})
		if err != nil {
			return IntelligentSearchResponse{}, err
		}
		if req.Options.IncludeReasoning {
			resp.ReasoningHops = chain.Hops
		}
		resp.Results, err = searchOnce(ctx, req.Query)
		if err != nil {
			return IntelligentSearchResponse{}, err
		}
	} else {
		resp.Results, err = searchOnce(ctx, req.Query)
		if err != nil {
			return IntelligentSearchResponse{}, err
		}
	}

	if req.Options.Mode == ModeSynthesis {
		windows, crossRefs := e.stitcher.Stitch(resp.Results)
		resp.ContextWindows = windows
		resp.CrossReferences = crossRefs

		if req.Options.IncludeSynthesis && e.synth == nil {
			resp.SynthesisDegraded = true
		} else if req.Options.IncludeSynthesis {
			answer, err := e.synth.Synthesize(ctx, req.Query, windows, synthesis.Options{Style: synthesis.StyleDetailed, IncludeCitations: true})
			if err != nil {
				e.log.Warn("synthesis failed, returning windows without an answer", "error", err, "tenant", req.Tenant.String())
				resp.SynthesisDegraded = true
			} else {
				resp.Synthesis = &answer
			}
		}
	}

	resp.ProcessingTimeMS = time.Since(start).Milliseconds()
	return resp, nil
}

// CitationTraversalRequest is the input to CitationTraversal.
type CitationTraversalRequest struct {
	Tenant     model.TenantID
	SeedPapers []model.PaperID
	Direction  citation.Direction
	MaxHops    int
	Limit      int
}

// CitationTraversalResponse is the output of CitationTraversal.
type CitationTraversalResponse struct {
	Papers []model.TraversedPaper
	Edges  []model.CitationEdgeRef
}

// CitationTraversal runs a bounded BFS from every seed paper and returns
// the union of reached papers (first-visit wins across seeds), each with
// its authority score, and the edges traversed.
func (e *Engine) CitationTraversal(ctx context.Context, req CitationTraversalRequest) (CitationTraversalResponse, error) {
	graph, err := e.graphFor(ctx, req.Tenant)
	if err != nil {
		return CitationTraversalResponse{}, err
	}
	authority := e.scorer.Compute(graph)

	seenPapers := make(map[model.PaperID]bool)
	var papers []model.TraversedPaper
	var edges []model.CitationEdgeRef

	for _, seed := range req.SeedPapers {
		hits, seedEdges := graph.Traverse(seed, req.MaxHops, req.Direction)
		edges = append(edges, seedEdges...)
		for _, h := range hits {
			if seenPapers[h.PaperID] {
				continue
			}
			seenPapers[h.PaperID] = true
			h.AuthorityScore = authority[h.PaperID]
			papers = append(papers, h)
		}
	}

	sort.SliceStable(papers, func(i, j int) bool {
		if papers[i].HopDistance != papers[j].HopDistance {
			return papers[i].HopDistance < papers[j].HopDistance
		}
		return papers[i].AuthorityScore > papers[j].AuthorityScore
	})

	if req.Limit > 0 && len(papers) > req.Limit {
		papers = papers[:req.Limit]
	}

	return CitationTraversalResponse{Papers: papers, Edges: edges}, nil
}

// Authorities returns the top-limit papers by PageRank authority.
func (e *Engine) Authorities(ctx context.Context, tenant model.TenantID, limit int) ([]model.AuthorityPaper, error) {
	graph, err := e.graphFor(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return e.scorer.Rank(graph, limit), nil
}
