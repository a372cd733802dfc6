// Package queryparser classifies query intent, extracts entities, and
// expands query terms with synonyms — the first stage of every intelligent
// search request.
package queryparser

import (
	"strconv"
	"strings"

	"github.com/paperforge/paperforge-core/internal/apperr"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentFactual     Intent = "factual"
	IntentComparison  Intent = "comparison"
	IntentExploratory Intent = "exploratory"
	IntentProcedural  Intent = "procedural"
	IntentSurvey      Intent = "survey"
	IntentGeneral     Intent = "general"
)

// EntityType classifies one extracted entity. Author, Dataset, and Venue
// are kept for forward compatibility with a future detector; this version
// of extraction never produces them, since nothing in the implementation
// this module was grounded on exercised them either.
type EntityType string

const (
	EntityConcept  EntityType = "concept"
	EntityAuthor   EntityType = "author"
	EntityMethod   EntityType = "method"
	EntityDataset  EntityType = "dataset"
	EntityVenue    EntityType = "venue"
	EntityTemporal EntityType = "temporal"
	EntityTerm     EntityType = "term"
)

// Entity is one extracted span of meaning from a query.
type Entity struct {
	Text       string
	Type       EntityType
	Confidence float64
}

// Understanding is the full result of parsing one query.
type Understanding struct {
	OriginalQuery  string
	Intent         Intent
	Entities       []Entity
	ExpandedTerms  []string
	Confidence     float64
}

// Config tunes expansion and entity-confidence filtering.
type Config struct {
	MaxExpansions      int
	MinEntityConfidence float64
}

// Parser classifies intent, extracts entities, and expands terms using a
// fixed synonym dictionary and stop-word list.
type Parser struct {
	cfg      Config
	synonyms map[string][]string
	stopWords map[string]bool
}

// New builds a Parser with the given configuration.
func New(cfg Config) *Parser {
	return &Parser{
		cfg:       cfg,
		synonyms:  defaultSynonyms(),
		stopWords: stopWordSet(),
	}
}

// Parse classifies intent, extracts entities, and expands terms for query.
func (p *Parser) Parse(query string) (Understanding, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Understanding{}, apperr.InvalidQueryf("query is empty")
	}
	if len(trimmed) > 2000 {
		return Understanding{}, apperr.InvalidQueryf("query exceeds 2000 characters")
	}

	lower := strings.ToLower(trimmed)

	intent := p.detectIntent(lower)
	entities := p.extractEntities(lower)
	expanded := p.expandQuery(lower)
	confidence := p.calculateConfidence(intent, entities)

	return Understanding{
		OriginalQuery: lower,
		Intent:        intent,
		Entities:      entities,
		ExpandedTerms: expanded,
		Confidence:    confidence,
	}, nil
}

// detectIntent applies the fixed precedence order: Comparison, Procedural,
// Survey, Factual, Exploratory, then General. First match wins.
func (p *Parser) detectIntent(lower string) Intent {
	switch {
	case strings.Contains(lower, " vs "),
		strings.Contains(lower, " versus "),
		strings.Contains(lower, "compare"),
		strings.Contains(lower, "difference between"):
		return IntentComparison
	case strings.HasPrefix(lower, "how to"),
		strings.HasPrefix(lower, "how do"),
		strings.Contains(lower, "step by step"),
		strings.Contains(lower, "implement"):
		return IntentProcedural
	case strings.Contains(lower, "state of the art"),
		strings.Contains(lower, "survey"),
		strings.Contains(lower, "review of"),
		strings.Contains(lower, "overview"):
		return IntentSurvey
	case strings.HasPrefix(lower, "what is"),
		strings.HasPrefix(lower, "who is"),
		strings.HasPrefix(lower, "when"),
		strings.HasPrefix(lower, "define"):
		return IntentFactual
	case strings.HasPrefix(lower, "why"),
		strings.HasPrefix(lower, "explain"),
		strings.Contains(lower, "understand"):
		return IntentExploratory
	default:
		return IntentGeneral
	}
}

var methodKeywords = map[string]bool{
	"algorithm": true, "model": true, "network": true, "transformer": true,
	"cnn": true, "rnn": true, "lstm": true, "bert": true, "gpt": true,
	"attention": true, "embedding": true, "classifier": true,
	"regression": true, "clustering": true, "detection": true, "segmentation": true,
}

var temporalTerms = map[string]bool{
	"recent": true, "latest": true, "new": true, "early": true, "current": true,
}

var knownBigrams = map[string]bool{
	"machine learning": true, "deep learning": true, "neural network": true,
	"natural language": true, "computer vision": true, "reinforcement learning": true,
	"transfer learning": true, "attention mechanism": true, "language model": true,
	"knowledge graph": true, "graph neural": true, "generative model": true,
}

// extractEntities scans the lowercased token stream in source order,
// emitting Method, Temporal, Concept, and Term entities, then
// drops anything below the configured minimum confidence.
func (p *Parser) extractEntities(lower string) []Entity {
	words := strings.Fields(lower)
	var entities []Entity

	for i := 0; i < len(words); i++ {
		word := words[i]

		if p.isStopWord(word) {
			continue
		}

		if methodKeywords[word] {
			entities = append(entities, Entity{Text: word, Type: EntityMethod, Confidence: 0.7})
		}

		if isTemporal(word) {
			entities = append(entities, Entity{Text: word, Type: EntityTemporal, Confidence: 0.9})
		}

		if i+1 < len(words) {
			bigram := word + " " + words[i+1]
			if knownBigrams[bigram] {
				entities = append(entities, Entity{Text: bigram, Type: EntityConcept, Confidence: 0.85})
				i++
				continue
			}
		}

		if len(word) > 3 && !methodKeywords[word] && !isTemporal(word) {
			entities = append(entities, Entity{Text: word, Type: EntityTerm, Confidence: 0.5})
		}
	}

	filtered := entities[:0:0]
	for _, e := range entities {
		if e.Confidence >= p.cfg.MinEntityConfidence {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func isTemporal(word string) bool {
	if year, err := strconv.Atoi(word); err == nil {
		return year >= 1900 && year <= 2100
	}
	return temporalTerms[word]
}

func (p *Parser) isStopWord(word string) bool { return p.stopWords[word] }

// expandQuery looks up each token in the synonym dictionary, flattening in
// insertion order, deduplicating, and truncating to MaxExpansions.
func (p *Parser) expandQuery(lower string) []string {
	var expansions []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(lower) {
		syns, ok := p.synonyms[word]
		if !ok {
			continue
		}
		for _, syn := range syns {
			if len(expansions) >= p.cfg.MaxExpansions {
				break
			}
			if seen[syn] {
				continue
			}
			seen[syn] = true
			expansions = append(expansions, syn)
		}
	}

	if len(expansions) > p.cfg.MaxExpansions {
		expansions = expansions[:p.cfg.MaxExpansions]
	}
	return expansions
}

func (p *Parser) calculateConfidence(intent Intent, entities []Entity) float64 {
	intentConf := 0.8
	if intent == IntentGeneral {
		intentConf = 0.5
	}

	entityConf := 0.4
	if len(entities) > 0 {
		sum := 0.0
		for _, e := range entities {
			sum += e.Confidence
		}
		entityConf = sum / float64(len(entities))
	}

	return (intentConf + entityConf) / 2.0
}

func defaultSynonyms() map[string][]string {
	return map[string][]string{
		"ml":  {"machine learning"},
		"nlp": {"natural language processing"},
		"cv":  {"computer vision"},
		"dl":  {"deep learning"},
		"llm": {"large language model"},
		"rl":  {"reinforcement learning"},
		"gan": {"generative adversarial network"},
		"vae": {"variational autoencoder"},
	}
}

// StopWords returns the closed stop-word set used by entity extraction and
// (via this shared definition) by the lexical retriever's meaningful-token
// check (queries that reduce to zero meaningful tokens ... return
// the empty sequence").
func StopWords() map[string]bool { return stopWordSet() }

// MeaningfulTokens lowercases and splits query, dropping stop words.
func MeaningfulTokens(query string) []string {
	stop := stopWordSet()
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if stop[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func stopWordSet() map[string]bool {
	words := []string{
		"a", "an", "the", "is", "are", "was", "were", "be", "been",
		"in", "on", "at", "to", "for", "of", "with", "by", "from",
		"and", "or", "but", "not", "this", "that", "these", "those",
		"it", "its", "as", "do", "does", "did", "has", "have", "had",
		"can", "could", "will", "would", "should", "may", "might",
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
