// Package stitcher assembles ranked chunks into token-budgeted context
// windows and detects cross-references between them (C8).
package stitcher

import (
	"sort"
	"strings"

	"github.com/paperforge/paperforge-core/internal/model"
)

// Config tunes window assembly and the token budget.
type Config struct {
	MaxTokens         int
	MaxWindows        int
	StitchOverlapChars int
	MinChunkScore     float64
}

// Stitcher groups ranked chunks by paper into coherent, token-budgeted
// context windows.
type Stitcher struct {
	cfg Config
}

// New builds a Stitcher with the given configuration.
func New(cfg Config) *Stitcher {
	return &Stitcher{cfg: cfg}
}

// Stitch groups ranked (score-descending) chunks into windows and returns
// them alongside the cross-references detected among them.
func (s *Stitcher) Stitch(ranked []model.ScoredChunk) ([]model.ContextWindow, []model.CrossReference) {
	filtered := make([]model.ScoredChunk, 0, len(ranked))
	for _, c := range ranked {
		if c.Score >= s.cfg.MinChunkScore {
			filtered = append(filtered, c)
		}
	}

	order, groups := groupByPaperFirstAppearance(filtered)

	windows := make([]model.ContextWindow, 0, s.cfg.MaxWindows)
	totalTokens := 0

	for _, paperID := range order {
		if len(windows) >= s.cfg.MaxWindows {
			break
		}

		window := s.buildWindow(paperID, groups[paperID])

		if totalTokens+window.TokenCount > s.cfg.MaxTokens {
			remaining := s.cfg.MaxTokens - totalTokens
			if remaining >= 500 {
				trimmed := s.trim(window, remaining)
				totalTokens += trimmed.TokenCount
				windows = append(windows, trimmed)
			}
			break
		}

		totalTokens += window.TokenCount
		windows = append(windows, window)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].RelevanceScore != windows[j].RelevanceScore {
			return windows[i].RelevanceScore > windows[j].RelevanceScore
		}
		return windows[i].PaperID.String() < windows[j].PaperID.String()
	})

	crossRefs := detectCrossReferences(windows)

	return windows, crossRefs
}

// groupByPaperFirstAppearance groups chunks by paper, sorting each group by
// chunk index, and returns the paper order in first-appearance order within
// chunks — preserving the caller's ranked ordering, unlike a plain map
// iteration which would scramble it.
func groupByPaperFirstAppearance(chunks []model.ScoredChunk) ([]model.PaperID, map[model.PaperID][]model.ScoredChunk) {
	groups := make(map[model.PaperID][]model.ScoredChunk)
	var order []model.PaperID

	for _, c := range chunks {
		if _, ok := groups[c.PaperID]; !ok {
			order = append(order, c.PaperID)
		}
		groups[c.PaperID] = append(groups[c.PaperID], c)
	}

	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool { return group[i].ChunkIndex < group[j].ChunkIndex })
		groups[id] = group
	}

	return order, groups
}

func (s *Stitcher) buildWindow(paperID model.PaperID, chunks []model.ScoredChunk) model.ContextWindow {
	if len(chunks) == 0 {
		return model.ContextWindow{PaperID: paperID}
	}

	sum := 0.0
	for _, c := range chunks {
		sum += c.Score
	}
	relevance := sum / float64(len(chunks))

	content := s.stitchContent(chunks)

	return model.ContextWindow{
		PaperID:         paperID,
		PaperTitle:      chunks[0].PaperTitle,
		Content:         content,
		FirstChunkIndex: chunks[0].ChunkIndex,
		LastChunkIndex:  chunks[len(chunks)-1].ChunkIndex,
		RelevanceScore:  relevance,
		TokenCount:      estimateTokens(content),
	}
}

// stitchContent concatenates chunk contents in order, dropping a repeated
// prefix where the tail of the accumulated text already contains the head
// of the next chunk, and inserting a blank line otherwise.
func (s *Stitcher) stitchContent(chunks []model.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	if len(chunks) == 1 {
		return chunks[0].Content
	}

	var b strings.Builder
	b.WriteString(chunks[0].Content)

	for i := 1; i < len(chunks); i++ {
		accumulated := b.String()
		next := chunks[i].Content

		tail := accumulated
		if len(accumulated) > s.cfg.StitchOverlapChars {
			tail = accumulated[len(accumulated)-s.cfg.StitchOverlapChars:]
		}
		head := next
		if len(next) > s.cfg.StitchOverlapChars {
			head = next[:s.cfg.StitchOverlapChars]
		}

		if strings.Contains(tail, head) {
			if len(next) > len(head) {
				b.WriteString(next[len(head):])
			}
		} else {
			b.WriteString("\n\n")
			b.WriteString(next)
		}
	}

	return b.String()
}

// trim truncates content to the remaining token budget (character-prefix,
// not chunk-level).
func (s *Stitcher) trim(window model.ContextWindow, remainingTokens int) model.ContextWindow {
	maxChars := remainingTokens * 4
	if len(window.Content) > maxChars {
		window.Content = window.Content[:maxChars]
	}
	window.TokenCount = estimateTokens(window.Content)
	return window
}

func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func detectCrossReferences(windows []model.ContextWindow) []model.CrossReference {
	var refs []model.CrossReference
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			strength := jaccard(windows[i].Content, windows[j].Content)
			if strength >= 0.2 {
				refs = append(refs, model.CrossReference{
					FromWindow: i,
					ToWindow:   j,
					Relation:   model.RefConcept,
					Strength:   strength,
				})
			}
		}
	}
	return refs
}

// jaccard computes token overlap between two texts restricted to lowercased
// tokens longer than 4 characters.
func jaccard(a, b string) float64 {
	setA := longTokenSet(a)
	setB := longTokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func longTokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 4 {
			set[w] = true
		}
	}
	return set
}
