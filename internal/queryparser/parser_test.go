package queryparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{MaxExpansions: 5, MinEntityConfidence: 0.6}
}

func TestParse_ExploratoryWithEntities(t *testing.T) {
	p := New(testConfig())

	got, err := p.Parse("Why does transformer attention mechanism work?")
	require.NoError(t, err)

	assert.Equal(t, IntentExploratory, got.Intent)
	assert.NotEmpty(t, got.Entities)
}

func TestParse_ComparisonIntent(t *testing.T) {
	p := New(testConfig())

	got, err := p.Parse("Compare BERT vs GPT for text classification")
	require.NoError(t, err)

	assert.Equal(t, IntentComparison, got.Intent)
}

func TestParse_ProceduralIntent(t *testing.T) {
	p := New(testConfig())

	got, err := p.Parse("How to implement attention mechanism")
	require.NoError(t, err)

	assert.Equal(t, IntentProcedural, got.Intent)
}

func TestParse_IntentPrecedence(t *testing.T) {
	p := New(testConfig())

	// Contains both a comparison and a procedural marker; comparison wins.
	got, err := p.Parse("how to compare two models")
	require.NoError(t, err)
	assert.Equal(t, IntentComparison, got.Intent)
}

func TestParse_EmptyQueryIsInvalid(t *testing.T) {
	p := New(testConfig())

	_, err := p.Parse("   ")
	require.Error(t, err)
}

func TestParse_EntityConfidenceFiltering(t *testing.T) {
	cfg := Config{MaxExpansions: 5, MinEntityConfidence: 0.6}
	p := New(cfg)

	got, err := p.Parse("the transformer model uses deep learning")
	require.NoError(t, err)

	for _, e := range got.Entities {
		assert.GreaterOrEqual(t, e.Confidence, cfg.MinEntityConfidence)
	}

	var sawConcept, sawMethod bool
	for _, e := range got.Entities {
		if e.Type == EntityConcept && e.Text == "deep learning" {
			sawConcept = true
		}
		if e.Type == EntityMethod && e.Text == "transformer" {
			sawMethod = true
		}
	}
	assert.True(t, sawConcept, "expected 'deep learning' concept bigram")
	assert.True(t, sawMethod, "expected 'transformer' method keyword")
}

func TestParse_Expansion(t *testing.T) {
	p := New(testConfig())

	got, err := p.Parse("ml and nlp research")
	require.NoError(t, err)

	assert.Contains(t, got.ExpandedTerms, "machine learning")
	assert.Contains(t, got.ExpandedTerms, "natural language processing")
}

func TestParse_ExpansionTruncation(t *testing.T) {
	p := New(Config{MaxExpansions: 1, MinEntityConfidence: 0.6})

	got, err := p.Parse("ml and nlp research")
	require.NoError(t, err)

	assert.Len(t, got.ExpandedTerms, 1)
}
