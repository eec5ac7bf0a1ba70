package eval

import (
	"math"
	"testing"
)

func TestPerplexity(t *testing.T) {
	// Uniform logprob of ln(0.5) per token: perplexity is exactly 2.
	lp := math.Log(0.5)
	got := Perplexity([]float64{lp, lp, lp, lp})
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("Perplexity = %f, want 2", got)
	}
}

func TestPerplexity_Degenerate(t *testing.T) {
	if !math.IsInf(Perplexity(nil), 1) {
		t.Error("nil logprobs must yield +Inf")
	}
	if !math.IsInf(Perplexity([]float64{}), 1) {
		t.Error("empty logprobs must yield +Inf")
	}
	if !math.IsInf(Perplexity([]float64{-1, 0.5}), 1) {
		t.Error("positive logprob must yield +Inf")
	}
	if !math.IsInf(Perplexity([]float64{math.NaN()}), 1) {
		t.Error("NaN logprob must yield +Inf")
	}
}

func TestBLEU1(t *testing.T) {
	cand := []string{"well", "met", "traveler"}

	// Full overlap: (3+1)/(3+1) = 1, no brevity penalty.
	if got := BLEU1(cand, cand); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical BLEU1 = %f, want 1", got)
	}

	// No overlap stays nonzero through smoothing.
	got := BLEU1(cand, []string{"completely", "different", "words"})
	if got <= 0 || got >= 1 {
		t.Errorf("disjoint BLEU1 = %f, want in (0, 1)", got)
	}
}

func TestBLEU1_BrevityPenalty(t *testing.T) {
	short := []string{"hello"}
	ref := []string{"hello", "there", "my", "old", "friend"}
	full := BLEU1(ref, ref)
	penalized := BLEU1(short, ref)
	if penalized >= full {
		t.Errorf("short candidate (%f) should score below full match (%f)", penalized, full)
	}
}

func TestBLEU1_ClippedMatches(t *testing.T) {
	// A repeated candidate token only matches as often as the reference
	// contains it: 2 matches out of 4 tokens, (2+1)/(4+1).
	got := BLEU1([]string{"the", "the", "the", "the"}, []string{"the", "cat", "the", "mat"})
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("clipped BLEU1 = %f, want 0.6", got)
	}
}

func TestMETEOR(t *testing.T) {
	cand := []string{"well", "met", "traveler"}

	got := METEOR(cand, cand)
	if got <= 0 || got > 1 {
		t.Errorf("identical METEOR = %f, want in (0, 1]", got)
	}

	if METEOR(cand, []string{"nothing", "matches", "here"}) != 0 {
		t.Error("disjoint METEOR must be 0")
	}
	if METEOR(nil, cand) != 0 {
		t.Error("empty candidate METEOR must be 0")
	}
}

func TestMETEOR_FragmentationPenalty(t *testing.T) {
	ref := []string{"a", "b", "c", "d"}
	contiguous := METEOR([]string{"a", "b", "c", "d"}, ref)
	fragmented := METEOR([]string{"a", "x", "b", "y", "c", "z", "d"}, ref)
	if fragmented >= contiguous {
		t.Errorf("fragmented matches (%f) should score below contiguous (%f)", fragmented, contiguous)
	}
}

func TestDistinctN(t *testing.T) {
	if got := DistinctN([]string{"a", "b", "c"}, 1); got != 1 {
		t.Errorf("all-unique distinct-1 = %f, want 1", got)
	}
	if got := DistinctN([]string{"a", "a", "a", "a"}, 1); got != 0.25 {
		t.Errorf("repeated distinct-1 = %f, want 0.25", got)
	}
	if got := DistinctN(nil, 1); got != 0 {
		t.Errorf("empty distinct-1 = %f, want 0", got)
	}
}

func TestEvaluate(t *testing.T) {
	m, err := Evaluate("Well met, traveler!", "Hello there", []float64{-0.5, -0.7, -0.2})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if m.BLEU1 < 0 || m.BLEU1 > 1 {
		t.Errorf("BLEU1 out of range: %f", m.BLEU1)
	}
	if m.METEOR < 0 || m.METEOR > 1 {
		t.Errorf("METEOR out of range: %f", m.METEOR)
	}
	if m.Distinct1 != 1 {
		t.Errorf("Distinct1 = %f, want 1 for all-unique reply", m.Distinct1)
	}
	if math.IsInf(m.Perplexity, 1) {
		t.Error("Perplexity should be finite with logprobs present")
	}
}

func TestEvaluate_NoLogProbs(t *testing.T) {
	m, err := Evaluate("Some reply here", "input", nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !math.IsInf(m.Perplexity, 1) {
		t.Error("Perplexity must be +Inf without logprobs")
	}
}

func TestEvaluate_EmptyReply(t *testing.T) {
	if _, err := Evaluate("  ", "input", nil); err == nil {
		t.Error("Expected error for empty reply")
	}
}
