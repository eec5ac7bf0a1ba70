// Package eval computes advisory text-quality metrics over generated NPC
// replies. Everything here is observability only: callers log the numbers
// and move on, and any failure is swallowed without touching the dialogue
// path.
package eval

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Metrics is one advisory measurement of a generated reply. Discarded after
// logging or telemetry storage.
type Metrics struct {
	// Perplexity is derived from backend-reported per-token
	// log-probabilities, or +Inf when they are unavailable or degenerate.
	Perplexity float64 `json:"perplexity"`

	// BLEU1 is smoothed unigram BLEU of the reply against the player's
	// input as a pseudo-reference, in [0, 1].
	BLEU1 float64 `json:"bleu_1"`

	// METEOR is the unigram METEOR score for the same pairing, in [0, 1].
	METEOR float64 `json:"meteor"`

	// Distinct1 is the unique-unigram ratio within the reply, in [0, 1].
	Distinct1 float64 `json:"distinct_1"`
}

// MarshalJSON encodes an infinite or NaN perplexity as null, since JSON has
// no representation for either.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	aux := struct {
		alias
		Perplexity *float64 `json:"perplexity"`
	}{alias: alias(m)}
	if !math.IsInf(m.Perplexity, 0) && !math.IsNaN(m.Perplexity) {
		aux.Perplexity = &m.Perplexity
	}
	return json.Marshal(aux)
}

// Evaluate computes the full metric set for a finalized reply. The player's
// input text serves as the pseudo-reference for the overlap metrics, which
// makes their absolute values weak; they are tracked for drift, not truth.
func Evaluate(reply, playerText string, logProbs []float64) (*Metrics, error) {
	replyTokens := tokenize(reply)
	if len(replyTokens) == 0 {
		return nil, fmt.Errorf("reply has no tokens")
	}
	refTokens := tokenize(playerText)

	return &Metrics{
		Perplexity: Perplexity(logProbs),
		BLEU1:      BLEU1(replyTokens, refTokens),
		METEOR:     METEOR(replyTokens, refTokens),
		Distinct1:  DistinctN(replyTokens, 1),
	}, nil
}

// Perplexity converts per-token log-probabilities to perplexity,
// exp(-mean(logprob)). Missing or degenerate inputs yield +Inf.
func Perplexity(logProbs []float64) float64 {
	if len(logProbs) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, lp := range logProbs {
		if math.IsNaN(lp) || lp > 0 {
			return math.Inf(1)
		}
		sum += lp
	}
	return math.Exp(-sum / float64(len(logProbs)))
}

// BLEU1 computes smoothed unigram BLEU of candidate against a single
// reference, with the standard brevity penalty. Add-one smoothing keeps the
// score nonzero when there is no overlap.
func BLEU1(candidate, reference []string) float64 {
	if len(candidate) == 0 {
		return 0
	}

	refCounts := countTokens(reference)
	matches := 0
	for _, tok := range candidate {
		if refCounts[tok] > 0 {
			refCounts[tok]--
			matches++
		}
	}

	precision := (float64(matches) + 1) / (float64(len(candidate)) + 1)

	bp := 1.0
	if len(candidate) < len(reference) {
		bp = math.Exp(1 - float64(len(reference))/float64(len(candidate)))
	}
	return bp * precision
}

// METEOR computes the unigram METEOR score: harmonic mean of precision and
// recall weighted toward recall, discounted by a fragmentation penalty over
// contiguous match chunks.
func METEOR(candidate, reference []string) float64 {
	if len(candidate) == 0 || len(reference) == 0 {
		return 0
	}

	refCounts := countTokens(reference)
	matched := make([]bool, len(candidate))
	matches := 0
	for i, tok := range candidate {
		if refCounts[tok] > 0 {
			refCounts[tok]--
			matched[i] = true
			matches++
		}
	}
	if matches == 0 {
		return 0
	}

	precision := float64(matches) / float64(len(candidate))
	recall := float64(matches) / float64(len(reference))
	fMean := 10 * precision * recall / (recall + 9*precision)

	chunks := 0
	inChunk := false
	for _, m := range matched {
		if m && !inChunk {
			chunks++
		}
		inChunk = m
	}
	penalty := 0.5 * math.Pow(float64(chunks)/float64(matches), 3)

	return fMean * (1 - penalty)
}

// DistinctN returns the ratio of unique n-grams to total n-grams in tokens.
func DistinctN(tokens []string, n int) float64 {
	if n <= 0 || len(tokens) < n {
		return 0
	}
	total := len(tokens) - n + 1
	seen := make(map[string]struct{}, total)
	for i := 0; i < total; i++ {
		seen[strings.Join(tokens[i:i+n], " ")] = struct{}{}
	}
	return float64(len(seen)) / float64(total)
}

// countTokens builds a token frequency map, used for clipped match counting
// against the reference.
func countTokens(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
