package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.RRFK != 60 {
		t.Errorf("RRFK = %d, want 60", cfg.RRFK)
	}
	if cfg.RRFVectorWeight != 0.6 {
		t.Errorf("RRFVectorWeight = %v, want 0.6", cfg.RRFVectorWeight)
	}
	if cfg.RRFLexicalWeight != 0.4 {
		t.Errorf("RRFLexicalWeight = %v, want 0.4", cfg.RRFLexicalWeight)
	}
	if cfg.PageRankDamping != 0.85 {
		t.Errorf("PageRankDamping = %v, want 0.85", cfg.PageRankDamping)
	}
	if cfg.PageRankMaxIter != 100 {
		t.Errorf("PageRankMaxIter = %d, want 100", cfg.PageRankMaxIter)
	}
	if cfg.AuthorityAlpha != 0.8 {
		t.Errorf("AuthorityAlpha = %v, want 0.8", cfg.AuthorityAlpha)
	}
	if cfg.StitcherMaxTokens != 4000 {
		t.Errorf("StitcherMaxTokens = %d, want 4000", cfg.StitcherMaxTokens)
	}
	if cfg.StitcherMaxWindows != 5 {
		t.Errorf("StitcherMaxWindows = %d, want 5", cfg.StitcherMaxWindows)
	}
	if cfg.ReasonerMaxHops != 3 {
		t.Errorf("ReasonerMaxHops = %d, want 3", cfg.ReasonerMaxHops)
	}
	if cfg.ReasonerMinConfidence != 0.5 {
		t.Errorf("ReasonerMinConfidence = %v, want 0.5", cfg.ReasonerMinConfidence)
	}
	if cfg.ParserMaxExpansions != 5 {
		t.Errorf("ParserMaxExpansions = %d, want 5", cfg.ParserMaxExpansions)
	}
	if cfg.SynthesisMaxOutputTokens != 1000 {
		t.Errorf("SynthesisMaxOutputTokens = %d, want 1000", cfg.SynthesisMaxOutputTokens)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RRF_K", "30")
	t.Setenv("AUTHORITY_ALPHA", "0.5")
	t.Setenv("REASONER_MAX_HOPS", "5")

	cfg := Load()

	if cfg.RRFK != 30 {
		t.Errorf("RRFK = %d, want 30", cfg.RRFK)
	}
	if cfg.AuthorityAlpha != 0.5 {
		t.Errorf("AuthorityAlpha = %v, want 0.5", cfg.AuthorityAlpha)
	}
	if cfg.ReasonerMaxHops != 5 {
		t.Errorf("ReasonerMaxHops = %d, want 5", cfg.ReasonerMaxHops)
	}
}

func TestLoad_InvalidNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("RRF_K", "not-a-number")

	cfg := Load()

	if cfg.RRFK != 60 {
		t.Errorf("RRFK = %d, want fallback 60", cfg.RRFK)
	}
}
