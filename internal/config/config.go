// Package config loads tuning knobs for every retrieval and context
// component from environment variables, following the flat-struct,
// no-reflection pattern used throughout this codebase.
package config

import (
	"os"
	"strconv"
)

// Config holds every tuning value the retrieval and context-intelligence
// components read at construction time. It is immutable after Load()
// returns.
type Config struct {
	RRFK             int
	RRFVectorWeight  float64
	RRFLexicalWeight float64

	PageRankDamping float64
	PageRankMaxIter int
	PageRankEpsilon float64

	AuthorityAlpha float64

	StitcherMaxTokens         int
	StitcherMaxWindows        int
	StitcherOverlapChars      int
	StitcherMinChunkScore     float64

	ReasonerMaxHops        int
	ReasonerMinConfidence  float64
	ReasonerMaxFactsPerHop int

	ParserMaxExpansions      int
	ParserMinEntityConfidence float64

	SynthesisDefaultStyle     string
	SynthesisMaxOutputTokens  int
	SynthesisTemperature      float64

	RetrieverTimeout   int // milliseconds
	EmbedderTimeout    int // milliseconds
	LLMTimeout         int // milliseconds

	EmbeddingModel   string
	EmbeddingAPIKey  string
	LLMModel         string
	LLMAPIKey        string

	EmbeddingCacheTTLSeconds int
	QueryCacheTTLSeconds     int
	GraphCacheSize           int
}

// Load reads configuration from environment variables. Every value has a
// sensible default, so Load never fails — nothing in this core is required
// to be present at startup.
func Load() *Config {
	return &Config{
		RRFK:             envInt("RRF_K", 60),
		RRFVectorWeight:  envFloat("RRF_VECTOR_WEIGHT", 0.6),
		RRFLexicalWeight: envFloat("RRF_LEXICAL_WEIGHT", 0.4),

		PageRankDamping: envFloat("PAGERANK_DAMPING", 0.85),
		PageRankMaxIter: envInt("PAGERANK_MAX_ITER", 100),
		PageRankEpsilon: envFloat("PAGERANK_EPSILON", 1e-6),

		AuthorityAlpha: envFloat("AUTHORITY_ALPHA", 0.8),

		StitcherMaxTokens:     envInt("STITCHER_MAX_TOKENS", 4000),
		StitcherMaxWindows:    envInt("STITCHER_MAX_WINDOWS", 5),
		StitcherOverlapChars:  envInt("STITCHER_STITCH_OVERLAP_CHARS", 100),
		StitcherMinChunkScore: envFloat("STITCHER_MIN_CHUNK_SCORE", 0.3),

		ReasonerMaxHops:        envInt("REASONER_MAX_HOPS", 3),
		ReasonerMinConfidence:  envFloat("REASONER_MIN_CONFIDENCE", 0.5),
		ReasonerMaxFactsPerHop: envInt("REASONER_MAX_FACTS_PER_HOP", 5),

		ParserMaxExpansions:       envInt("PARSER_MAX_EXPANSIONS", 5),
		ParserMinEntityConfidence: envFloat("PARSER_MIN_ENTITY_CONFIDENCE", 0.6),

		SynthesisDefaultStyle:    envStr("SYNTHESIS_DEFAULT_STYLE", "detailed"),
		SynthesisMaxOutputTokens: envInt("SYNTHESIS_MAX_OUTPUT_TOKENS", 1000),
		SynthesisTemperature:     envFloat("SYNTHESIS_TEMPERATURE", 0.7),

		RetrieverTimeout: envInt("RETRIEVER_TIMEOUT_MS", 500),
		EmbedderTimeout:  envInt("EMBEDDER_TIMEOUT_MS", 2000),
		LLMTimeout:       envInt("LLM_TIMEOUT_MS", 30000),

		EmbeddingModel:  envStr("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingAPIKey: envStr("OPENAI_API_KEY", ""),
		LLMModel:        envStr("LLM_MODEL", "claude-sonnet-4-5"),
		LLMAPIKey:       envStr("ANTHROPIC_API_KEY", ""),

		EmbeddingCacheTTLSeconds: envInt("EMBEDDING_CACHE_TTL", 900),
		QueryCacheTTLSeconds:     envInt("QUERY_CACHE_TTL", 300),
		GraphCacheSize:           envInt("GRAPH_CACHE_SIZE", 64),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
