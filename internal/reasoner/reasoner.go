// Package reasoner implements the bounded multi-hop reasoning loop (C9): at
// each hop it searches, extracts supporting facts, and proposes a follow-up
// query until confidence drops or no follow-up remains.
package reasoner

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/model"
)

// SearchResult is one piece of evidence a hop's search_fn returns.
type SearchResult struct {
	Content string
	Source  string
	Score   float64
}

// SearchFunc runs one hop's search for query, returning ranked evidence.
type SearchFunc func(ctx context.Context, query string) ([]SearchResult, error)

// Config tunes the bound on hops and the continuation threshold.
type Config struct {
	MaxHops         int
	MinConfidence   float64
	MaxFactsPerHop  int
}

// Reasoner runs the bounded multi-hop loop.
type Reasoner struct {
	cfg Config
}

// New builds a Reasoner with the given configuration.
func New(cfg Config) *Reasoner {
	return &Reasoner{cfg: cfg}
}

// Config returns the reasoner's tuning configuration.
func (r *Reasoner) Config() Config { return r.cfg }

// Chain is the full result of reasoning from an initial query.
type Chain struct {
	OriginalQuery string
	Hops          []model.ReasoningHop
	AllFacts      []string
	Confidence    float64
}

// Reason executes the loop, calling search for each hop's query.
func (r *Reasoner) Reason(ctx context.Context, initialQuery string, search SearchFunc) (Chain, error) {
	var hops []model.ReasoningHop
	var allFacts []string
	seenFacts := make(map[string]bool)
	currentQuery := initialQuery

	for hopNum := 1; hopNum <= r.cfg.MaxHops; hopNum++ {
		results, err := search(ctx, currentQuery)
		if err != nil {
			return Chain{}, apperr.Upstreamf(err, "reasoner search failed at hop %d", hopNum)
		}
		if len(results) == 0 {
			break
		}

		facts := r.extractFacts(results, currentQuery, seenFacts)
		for _, f := range facts {
			seenFacts[f] = true
		}
		allFacts = append(allFacts, facts...)

		confidence := hopConfidence(results, facts, r.cfg.MaxFactsPerHop)

		var nextQuery, rationale string
		if hopNum < r.cfg.MaxHops {
			nextQuery, rationale = r.proposeNextQuery(currentQuery, facts)
		}

		hops = append(hops, model.ReasoningHop{
			HopNumber:  hopNum,
			Query:      currentQuery,
			Facts:      facts,
			NextQuery:  nextQuery,
			Rationale:  rationale,
			Confidence: confidence,
		})

		if confidence < r.cfg.MinConfidence {
			break
		}
		if nextQuery == "" {
			break
		}
		currentQuery = nextQuery
	}

	return Chain{
		OriginalQuery: initialQuery,
		Hops:          hops,
		AllFacts:      allFacts,
		Confidence:    meanHopConfidence(hops),
	}, nil
}

// extractFacts splits each result's content into sentences, retains those
// relevant to query, dedupes against facts seen in prior hops, sorts by
// ascending length, and keeps the first MaxFactsPerHop.
func (r *Reasoner) extractFacts(results []SearchResult, query string, seenFacts map[string]bool) []string {
	queryTokens := longLowercaseTokens(query, 3)

	var facts []string
	localSeen := make(map[string]bool)
	for _, res := range results {
		for _, sentence := range splitSentences(res.Content) {
			if len(sentence) < 20 || len(sentence) > 500 {
				continue
			}
			if !localSeen[sentence] && !seenFacts[sentence] && countMatchingTokens(sentence, queryTokens) >= 2 {
				localSeen[sentence] = true
				facts = append(facts, sentence)
			}
		}
	}

	sort.SliceStable(facts, func(i, j int) bool { return len(facts[i]) < len(facts[j]) })

	if len(facts) > r.cfg.MaxFactsPerHop {
		facts = facts[:r.cfg.MaxFactsPerHop]
	}
	return facts
}

func countMatchingTokens(sentence string, queryTokens map[string]bool) int {
	lower := strings.ToLower(sentence)
	count := 0
	for tok := range queryTokens {
		if strings.Contains(lower, tok) {
			count++
		}
	}
	return count
}

func longLowercaseTokens(text string, minLen int) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > minLen {
			set[w] = true
		}
	}
	return set
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, ch := range text {
		current.WriteRune(ch)
		if ch == '.' || ch == '?' || ch == '!' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func hopConfidence(results []SearchResult, facts []string, maxFactsPerHop int) float64 {
	if len(results) == 0 {
		return 0
	}

	sum := 0.0
	for _, res := range results {
		sum += res.Score
	}
	avgScore := sum / float64(len(results))

	factYield := float64(len(facts)) / float64(maxFactsPerHop)
	if factYield > 1 {
		factYield = 1
	}

	return (avgScore + factYield) / 2.0
}

func meanHopConfidence(hops []model.ReasoningHop) float64 {
	if len(hops) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range hops {
		sum += h.Confidence
	}
	return sum / float64(len(hops))
}

// proposeNextQuery generates a follow-up query and its rationale, reading
// original-case fact text for the capitalized-token scan — the text must
// never be lowercased first, or no token can ever match.
func (r *Reasoner) proposeNextQuery(currentQuery string, facts []string) (string, string) {
	if len(facts) == 0 {
		if strings.Contains(currentQuery, "how") {
			return strings.Replace(currentQuery, "how", "methods for", 1), "Rephrasing to find methods"
		}
		return "", ""
	}

	originalWords := longLowercaseTokens(currentQuery, -1)
	concepts := capitalizedConcepts(strings.Join(facts, " "), originalWords, 3)

	if len(concepts) == 0 {
		return "", ""
	}
	concept := concepts[0]
	return currentQuery + " " + concept, "Exploring related concept: " + concept
}

// capitalizedConcepts scans original-case text word by word, keeping
// alphanumeric-only tokens longer than 4 characters that start with an
// uppercase letter and are not already present (lowercased) in original.
func capitalizedConcepts(text string, original map[string]bool, limit int) []string {
	var concepts []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(text) {
		var clean strings.Builder
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				clean.WriteRune(r)
			}
		}
		token := clean.String()

		if len(token) <= 4 {
			continue
		}
		if original[strings.ToLower(token)] {
			continue
		}
		firstRune := []rune(token)[0]
		if !unicode.IsUpper(firstRune) {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		concepts = append(concepts, token)
		if len(concepts) >= limit {
			break
		}
	}
	return concepts
}
