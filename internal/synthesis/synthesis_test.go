package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperforge/paperforge-core/internal/corpus"
	"github.com/paperforge/paperforge-core/internal/model"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts corpus.CompletionOptions) (string, error) {
	return f.response, f.err
}

func twoWindows() []model.ContextWindow {
	return []model.ContextWindow{
		{PaperID: model.NewPaperID(), PaperTitle: "Paper 1", Content: "First paper content", RelevanceScore: 0.8},
		{PaperID: model.NewPaperID(), PaperTitle: "Paper 2", Content: "Second paper content", RelevanceScore: 0.7},
	}
}

func TestSynthesize_ExtractsCitationsInOrder(t *testing.T) {
	llm := &fakeLLM{response: "The model shows good results [1]. Further analysis [2] confirms this."}
	s := New(llm)

	answer, err := s.Synthesize(context.Background(), "does it work?", twoWindows(), Options{Style: StyleDetailed, IncludeCitations: true})

	require.NoError(t, err)
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, 1, answer.Citations[0].Index)
	assert.Equal(t, 2, answer.Citations[1].Index)
	assert.Equal(t, "Paper 1", answer.Citations[0].Title)
}

func TestSynthesize_DuplicateCitationKeepsFirstOccurrence(t *testing.T) {
	llm := &fakeLLM{response: "First mention [1]. Repeated mention [1] again."}
	s := New(llm)

	answer, err := s.Synthesize(context.Background(), "q", twoWindows(), Options{IncludeCitations: true})

	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, 1, answer.Citations[0].Index)
}

func TestSynthesize_OutOfRangeCitationIgnored(t *testing.T) {
	llm := &fakeLLM{response: "Reference [99] does not exist in windows."}
	s := New(llm)

	answer, err := s.Synthesize(context.Background(), "q", twoWindows(), Options{IncludeCitations: true})

	require.NoError(t, err)
	assert.Empty(t, answer.Citations)
}

func TestSynthesize_ConfidenceWithinBounds(t *testing.T) {
	llm := &fakeLLM{response: "Based on the analysis [1], we find important results that matter here."}
	s := New(llm)

	answer, err := s.Synthesize(context.Background(), "q", twoWindows()[:1], Options{IncludeCitations: true})

	require.NoError(t, err)
	assert.Greater(t, answer.Confidence, 0.0)
	assert.LessOrEqual(t, answer.Confidence, 1.0)
}

func TestSynthesize_EmptyResponseIsUpstreamError(t *testing.T) {
	llm := &fakeLLM{response: ""}
	s := New(llm)

	_, err := s.Synthesize(context.Background(), "q", twoWindows(), Options{})
	require.Error(t, err)
}

func TestSynthesize_LLMFailurePropagates(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	s := New(llm)

	_, err := s.Synthesize(context.Background(), "q", twoWindows(), Options{})
	require.Error(t, err)
}

func TestExtractKeyFacts_FiltersByMarkerAndLength(t *testing.T) {
	answer := "Too short. " +
		"The study shows that performance improves significantly under these conditions overall. " +
		"This sentence has no marker at all but is plausibly long enough to pass the length filter alone."

	facts := extractKeyFacts(answer)
	require.Len(t, facts, 1)
	assert.Contains(t, facts[0], "shows that")
}
