// Package synthesis builds grounded-answer prompts from stitched context
// windows, calls the external LLM once, and extracts citations and
// confidence from its response (C10).
package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paperforge/paperforge-core/internal/apperr"
	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

// Style is the answer's requested register.
type Style string

const (
	StyleConcise  Style = "concise"
	StyleDetailed Style = "detailed"
	StyleAcademic Style = "academic"
)

// Options configures one synthesis call.
type Options struct {
	Style             Style
	IncludeCitations  bool
	MaxOutputTokens   int
	Temperature       float64
	Model             string
}

// Answer is the full result of one synthesis call.
type Answer struct {
	Text       string
	Citations  []model.Citation
	Confidence float64
	KeyFacts   []string
}

// Synthesizer builds prompts over context windows and calls the LLM.
type Synthesizer struct {
	llm corpus.LLM
}

// New builds a Synthesizer over llm.
func New(llm corpus.LLM) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize answers question from windows using opts, returning the
// grounded answer, its extracted citations, and a confidence score.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, windows []model.ContextWindow, opts Options) (Answer, error) {
	prompt := buildPrompt(question, windows, opts)

	text, err := s.llm.Complete(ctx, prompt, corpus.CompletionOptions{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
	})
	if err != nil {
		return Answer{}, apperr.Upstreamf(err, "synthesis LLM call failed")
	}
	if strings.TrimSpace(text) == "" {
		return Answer{}, apperr.Upstreamf(nil, "synthesis LLM returned an empty response")
	}

	citations := extractCitations(text, windows)
	confidence := calculateConfidence(text, windows, citations)
	keyFacts := extractKeyFacts(text)

	return Answer{Text: text, Citations: citations, Confidence: confidence, KeyFacts: keyFacts}, nil
}

func buildPrompt(question string, windows []model.ContextWindow, opts Options) string {
	var styleInstruction string
	switch opts.Style {
	case StyleConcise:
		styleInstruction = "Provide a brief, focused answer."
	case StyleAcademic:
		styleInstruction = "Write in an academic style with proper terminology."
	default:
		styleInstruction = "Provide a comprehensive answer with explanations."
	}

	citationInstruction := "Do not include citations."
	if opts.IncludeCitations {
		citationInstruction = "Include inline citations in the format [1], [2], etc. referring to the indexed sources below."
	}

	var b strings.Builder
	b.WriteString("You are a research assistant. Answer the following question based ONLY on the provided context. ")
	b.WriteString("If the context doesn't contain enough information, say so. Do not make up information.\n\n")
	b.WriteString(styleInstruction)
	b.WriteString("\n")
	b.WriteString(citationInstruction)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")

	for i, w := range windows {
		fmt.Fprintf(&b, "\n[%d] %s (relevance: %.2f)\n%s\n", i+1, w.PaperTitle, w.RelevanceScore, w.Content)
	}

	b.WriteString("\nAnswer:")
	return b.String()
}

// extractCitations scans answer for `[n]` citation markers via a manual
// byte walk (no regexp), resolving each distinct n in [1, len(windows)] to
// the corresponding window. A repeated n keeps only its first occurrence.
func extractCitations(answer string, windows []model.ContextWindow) []model.Citation {
	var citations []model.Citation
	seen := make(map[int]bool)

	i := 0
	for i < len(answer) {
		if answer[i] != '[' {
			i++
			continue
		}
		start := i
		j := i + 1
		digitsStart := j
		for j < len(answer) && answer[j] >= '0' && answer[j] <= '9' {
			j++
		}
		if j == digitsStart || j >= len(answer) || answer[j] != ']' {
			i++
			continue
		}

		n, err := strconv.Atoi(answer[digitsStart:j])
		i = j + 1
		if err != nil || n < 1 || n > len(windows) {
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true

		w := windows[n-1]
		citations = append(citations, model.Citation{
			Index:    n,
			PaperID:  w.PaperID,
			Title:    w.PaperTitle,
			Quote:    firstNChars(w.Content, 200),
			Position: start,
		})
	}

	sort.SliceStable(citations, func(i, j int) bool { return citations[i].Index < citations[j].Index })
	return citations
}

func firstNChars(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func calculateConfidence(answer string, windows []model.ContextWindow, citations []model.Citation) float64 {
	if len(windows) == 0 {
		return 0.5
	}

	citationCoverage := float64(len(citations)) / float64(len(windows))

	sum := 0.0
	for _, w := range windows {
		sum += w.RelevanceScore
	}
	meanRelevance := sum / float64(len(windows))

	lengthFactor := float64(len(answer)) / 500.0
	if lengthFactor > 1 {
		lengthFactor = 1
	}

	confidence := 0.4*citationCoverage + 0.4*meanRelevance + 0.2*lengthFactor
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

var keyFactMarkers = []string{"found that", "shows that", "indicates", "demonstrates", "according to"}

// extractKeyFacts keeps sentences of length [20,300] containing one of the
// fixed fact markers, in order, up to 5.
func extractKeyFacts(answer string) []string {
	var facts []string
	for _, sentence := range splitSentences(answer) {
		if len(sentence) < 20 || len(sentence) > 300 {
			continue
		}
		lower := strings.ToLower(sentence)
		matched := false
		for _, marker := range keyFactMarkers {
			if strings.Contains(lower, marker) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		facts = append(facts, sentence+".")
		if len(facts) >= 5 {
			break
		}
	}
	return facts
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, ch := range text {
		if ch == '.' || ch == '!' || ch == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
