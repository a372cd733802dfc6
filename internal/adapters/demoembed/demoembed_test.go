package demoembed

import (
	"context"
	"math"
	"testing"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := New()
	ctx := context.Background()

	a, err := e.Embed(ctx, "pretraining corpora improve accuracy")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(ctx, "pretraining corpora improve accuracy")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(a) != dimension || len(b) != dimension {
		t.Fatalf("expected vectors of length %d", dimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical vectors for identical input, differ at %d", i)
		}
	}
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	e := New()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "citation graph authority ranking")
	b, _ := e.Embed(ctx, "synthesized answer with quoted evidence")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected distinct texts to produce distinct vectors")
	}
}

func TestEmbed_EmptyTextReturnsZeroVector(t *testing.T) {
	e := New()
	vec, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for _, x := range vec {
		if x != 0 {
			t.Fatal("expected zero vector for blank input")
		}
	}
}

func TestEmbed_IsNormalized(t *testing.T) {
	e := New()
	vec, err := e.Embed(context.Background(), "hybrid retrieval blends vector and lexical scores")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var sumSquares float64
	for _, x := range vec {
		sumSquares += float64(x) * float64(x)
	}
	if math.Abs(sumSquares-1.0) > 1e-3 {
		t.Fatalf("expected unit-norm vector, got sum of squares %f", sumSquares)
	}
}
